package screen

// MaxHashDistance is the largest pHash Hamming distance at which two frames
// are candidates for reusing the previous recognition.
const MaxHashDistance = 0
