package memeserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memefeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	JWT string `json:"jwt"`
}

// handleLogin exchanges credentials for a signed token.
func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("username and password are required"))
	}

	user, err := s.store.userByUsername(c.Context(), req.Username)
	if err != nil {
		if models.IsNotFound(err) {
			return respondError(c, models.NewUnauthorizedError("invalid credentials"))
		}
		return respondError(c, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return respondError(c, models.NewUnauthorizedError("invalid credentials"))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(loginResponse{JWT: token})
}

// handleGetUser returns a user's public profile.
func (s *Server) handleGetUser(c *fiber.Ctx) error {
	user, err := s.store.userByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUser(user))
}

// handleListMemes returns one page of the global feed, newest first.
func (s *Server) handleListMemes(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := s.cfg.PageSize

	ctx := c.Context()
	total, err := s.store.countMemes(ctx)
	if err != nil {
		return respondError(c, err)
	}
	records, err := s.store.listMemes(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	ids := make([]string, len(records))
	for i, m := range records {
		ids[i] = m.ID
	}
	counts, err := s.store.commentCounts(ctx, ids)
	if err != nil {
		return respondError(c, err)
	}

	results := make([]models.Meme, len(records))
	for i := range records {
		results[i] = toMeme(&records[i], counts[records[i].ID])
	}
	return c.JSON(models.Page[models.Meme]{
		Total:    int(total),
		PageSize: pageSize,
		Results:  results,
	})
}

// handleListComments returns one page of a meme's comments, oldest first.
func (s *Server) handleListComments(c *fiber.Ctx) error {
	memeID := c.Params("memeId")
	if _, err := s.store.memeByID(c.Context(), memeID); err != nil {
		return respondError(c, err)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := s.cfg.PageSize

	total, err := s.store.countComments(c.Context(), memeID)
	if err != nil {
		return respondError(c, err)
	}
	records, err := s.store.listComments(c.Context(), memeID, (page-1)*pageSize, pageSize)
	if err != nil {
		return respondError(c, err)
	}

	results := make([]models.Comment, len(records))
	for i := range records {
		results[i] = toComment(&records[i])
	}
	return c.JSON(models.Page[models.Comment]{
		Total:    int(total),
		PageSize: pageSize,
		Results:  results,
	})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// handleCreateComment posts a comment on a meme as the authenticated user.
func (s *Server) handleCreateComment(c *fiber.Ctx) error {
	memeID := c.Params("memeId")
	if _, err := s.store.memeByID(c.Context(), memeID); err != nil {
		return respondError(c, err)
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("invalid request body"))
	}
	if strings.TrimSpace(req.Content) == "" {
		return respondError(c, models.NewValidationError("comment content is required"))
	}

	record := &commentRecord{
		ID:        uuid.NewString(),
		MemeID:    memeID,
		AuthorID:  currentUserID(c),
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.createComment(c.Context(), record); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(toComment(record))
}

// handleCreateMeme accepts a multipart upload with a picture, an optional
// description, and indexed caption overlay fields (Texts[i][Content] etc).
func (s *Server) handleCreateMeme(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("picture")
	if err != nil {
		return respondError(c, models.NewValidationError("picture is required"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, models.NewValidationError("picture could not be read"))
	}
	defer file.Close()

	head := make([]byte, 512)
	n, _ := file.Read(head)
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return respondError(c, models.NewValidationError("picture must be an image"))
	}

	id := uuid.NewString()
	pictureURL, err := s.savePicture(c, fileHeader, id)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	record := &memeRecord{
		ID:          id,
		AuthorID:    currentUserID(c),
		PictureURL:  pictureURL,
		Description: c.FormValue("description"),
		Texts:       parseTextFields(c),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.createMeme(c.Context(), record); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(toMeme(record, 0))
}

// parseTextFields collects Texts[0][Content], Texts[0][X], ... until the
// first missing index.
func parseTextFields(c *fiber.Ctx) []memeTextRecord {
	var texts []memeTextRecord
	for i := 0; ; i++ {
		content := c.FormValue(fmt.Sprintf("Texts[%d][Content]", i))
		x := c.FormValue(fmt.Sprintf("Texts[%d][X]", i))
		y := c.FormValue(fmt.Sprintf("Texts[%d][Y]", i))
		if content == "" && x == "" && y == "" {
			return texts
		}
		texts = append(texts, memeTextRecord{
			Content:  content,
			X:        atoiOrZero(x),
			Y:        atoiOrZero(y),
			Position: i,
		})
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
