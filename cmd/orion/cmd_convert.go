package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/betbot/go-orion/orion/types"
)

var (
	convertOut        string
	convertLang       string
	convertTargetLang string
)

type audioOp func(ctx context.Context, ev *types.AudioEvent) (*types.AudioEvent, error)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert, transcribe or translate audio through Locris",
}

func newConvertCmd(use, short string, op func() audioOp, wantBytes bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "read %s", args[0])
			}
			ev, err := types.NewAudioEvent(audio)
			if err != nil {
				return err
			}
			ev.Lang = convertLang
			ev.TargetLang = convertTargetLang
			if wantBytes {
				ev.ReturnType = types.ReturnTypeBuffer
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()
			out, err := op()(ctx, ev)
			if err != nil {
				return err
			}

			if wantBytes {
				if convertOut == "" {
					return errors.New("--output is required for audio conversions")
				}
				if err := os.WriteFile(convertOut, out.Bytes, 0o644); err != nil {
					return errors.Wrapf(err, "write %s", convertOut)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(out.Bytes), convertOut)
				return nil
			}
			out.Payload = nil
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func init() {
	convertCmd.PersistentFlags().StringVarP(&convertOut, "output", "o", "", "Output file for converted audio")
	convertCmd.PersistentFlags().StringVar(&convertLang, "lang", "", "Source language")
	convertCmd.PersistentFlags().StringVar(&convertTargetLang, "target-lang", "", "Target language (translate)")

	convertCmd.AddCommand(
		newConvertCmd("wav2ov", "Convert WAV audio to OV", func() audioOp { return newLocris().WAV2OV }, true),
		newConvertCmd("ov2wav", "Convert OV audio to WAV", func() audioOp { return newLocris().OV2WAV }, true),
		newConvertCmd("stt", "Transcribe audio", func() audioOp { return newLocris().STT }, false),
		newConvertCmd("translate", "Transcribe and translate audio", func() audioOp { return newLocris().Translate }, false),
	)
	rootCmd.AddCommand(convertCmd)
}
