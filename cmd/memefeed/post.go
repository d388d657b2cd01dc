package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"memefeed/internal/api"
	"memefeed/internal/models"

	"github.com/spf13/cobra"
)

var (
	postPicture     string
	postDescription string
	postTexts       []string
)

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().StringVar(&postPicture, "picture", "", "Path to the image file (required)")
	postCmd.Flags().StringVar(&postDescription, "description", "", "Meme description")
	postCmd.Flags().StringArrayVar(&postTexts, "text", nil, "Caption overlay as CONTENT:X:Y (repeatable)")
	_ = postCmd.MarkFlagRequired("picture")
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a new meme",
	Long: `Upload an image as a new meme, optionally with caption overlays.

Examples:
  memefeed post --picture cat.png --description "my cat"
  memefeed post --picture cat.png --text "TOP TEXT:10:20" --text "BOTTOM TEXT:10:700"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		token, err := e.session.Token()
		if err != nil {
			return fmt.Errorf("not signed in, run \"memefeed login\" first")
		}

		texts, err := parseOverlays(postTexts)
		if err != nil {
			return err
		}

		file, err := os.Open(postPicture)
		if err != nil {
			return fmt.Errorf("opening picture: %w", err)
		}
		defer file.Close()

		meme, err := e.api.CreateMeme(cmd.Context(), token, api.CreateMemeInput{
			PictureName: filepath.Base(postPicture),
			Picture:     file,
			Description: postDescription,
			Texts:       texts,
		})
		if err != nil {
			return fmt.Errorf("posting meme: %w", err)
		}

		fmt.Printf("Posted meme %s\n", meme.ID)
		return nil
	},
}

// parseOverlays decodes repeated CONTENT:X:Y flags. Content may itself
// contain colons; the last two segments are the coordinates.
func parseOverlays(raw []string) ([]models.MemeText, error) {
	texts := make([]models.MemeText, 0, len(raw))
	for _, spec := range raw {
		parts := strings.Split(spec, ":")
		if len(parts) < 3 {
			return nil, fmt.Errorf("invalid --text %q, want CONTENT:X:Y", spec)
		}
		x, err := strconv.Atoi(parts[len(parts)-2])
		if err != nil {
			return nil, fmt.Errorf("invalid --text %q, X must be a number", spec)
		}
		y, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid --text %q, Y must be a number", spec)
		}
		texts = append(texts, models.MemeText{
			Content: strings.Join(parts[:len(parts)-2], ":"),
			X:       x,
			Y:       y,
		})
	}
	return texts, nil
}
