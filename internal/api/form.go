package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"memefeed/internal/models"
)

// encodeMemeForm builds the multipart body for meme creation. Field naming
// follows the server contract: picture, description, and indexed
// Texts[i][Content], Texts[i][X], Texts[i][Y].
func encodeMemeForm(in CreateMemeInput) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	name := in.PictureName
	if name == "" {
		name = "picture"
	}
	part, err := w.CreateFormFile("picture", name)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	if _, err := io.Copy(part, in.Picture); err != nil {
		return nil, "", models.NewInternalError(err)
	}

	if err := w.WriteField("description", in.Description); err != nil {
		return nil, "", models.NewInternalError(err)
	}
	for i, text := range in.Texts {
		fields := map[string]string{
			fmt.Sprintf("Texts[%d][Content]", i): text.Content,
			fmt.Sprintf("Texts[%d][X]", i):       itoa(text.X),
			fmt.Sprintf("Texts[%d][Y]", i):       itoa(text.Y),
		}
		for k, v := range fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", models.NewInternalError(err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return buf, w.FormDataContentType(), nil
}
