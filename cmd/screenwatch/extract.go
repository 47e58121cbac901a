package main

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/screenwatch/internal/config"
	"github.com/GriffinCanCode/screenwatch/internal/errors"
	"github.com/GriffinCanCode/screenwatch/internal/imaging"
	"github.com/GriffinCanCode/screenwatch/internal/ocr"
	"github.com/GriffinCanCode/screenwatch/internal/reading"
)

type extractOptions struct {
	image  string
	asJSON bool
}

// extractResult is the JSON form of one extraction; absent readings are null.
type extractResult struct {
	StrikeRate *int   `json:"strike_rate"`
	CPUUsage   *int   `json:"cpu_usage"`
	Text       string `json:"text,omitempty"`
}

func newExtractCmd(run *runOptions) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [text | -]",
		Short: "Extract readings from text or a screenshot",
		Long: "extract runs the reading extraction on the given text, on stdin when the text is \"-\" or missing, " +
			"or on the OCR output of an image given with --image.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(run.configPath)
			if err != nil {
				return err
			}
			extractor, err := reading.NewExtractor(cfg.StrikeRange, cfg.CPURange)
			if err != nil {
				return err
			}

			var text string
			switch {
			case opts.image != "":
				text, err = recognizeFile(cmd, cfg, opts.image)
			case len(args) == 1 && args[0] != "-":
				text = args[0]
			default:
				var raw []byte
				raw, err = io.ReadAll(cmd.InOrStdin())
				text = string(raw)
			}
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), extractor, text, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.image, "image", "i", "", "recognize this PNG or JPEG instead of reading text")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func recognizeFile(cmd *cobra.Command, cfg *config.Config, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", errors.Wrap(err, errors.OCRInvalidImage, "decode "+path)
	}
	engine := ocr.Tesseract{Path: cfg.TesseractPath, PSM: cfg.TesseractPSM, Lang: cfg.TesseractLang}
	return ocr.Guard(engine, cfg.OCRTimeout, nil).Recognize(cmd.Context(), imaging.Preprocess(img, imaging.DefaultOptions()))
}

func writeResult(w io.Writer, extractor reading.Extractor, text string, opts *extractOptions) error {
	pair := extractor.Parse(text)
	if opts.asJSON {
		res := extractResult{StrikeRate: valueOf(pair.Strike), CPUUsage: valueOf(pair.CPU)}
		if opts.image != "" {
			res.Text = strings.TrimSpace(text)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n%s: %s\n",
		extractor.Strike.Label, pair.Strike, extractor.CPU.Label, pair.CPU)
	return err
}

func valueOf(r reading.Reading) *int {
	if !r.Present {
		return nil
	}
	v := r.Value
	return &v
}
