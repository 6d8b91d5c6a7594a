package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/csheth/notable/internal/apperr"
	"github.com/csheth/notable/internal/assist"
	"github.com/csheth/notable/internal/auth"
	"github.com/csheth/notable/internal/notes"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) register(c *fiber.Ctx) error {
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := s.deps.Users.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (s *Server) login(c *fiber.Ctx) error {
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := s.deps.Users.Verify(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	token, claims, err := s.deps.Issuer.Issue(user)
	if err != nil {
		return err
	}
	return c.JSON(auth.LoginResponse{Token: token, ExpiresAt: claims.ExpiresAt, User: user})
}

func (s *Server) logout(c *fiber.Ctx) error {
	claims, ok := c.Locals(localClaims).(auth.Claims)
	if !ok {
		return apperr.Unauthorized("missing token")
	}
	s.deps.Issuer.Revoke(claims)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) store(c *fiber.Ctx) *notes.SQLStore {
	return s.deps.Notes.ForOwner(userID(c))
}

func (s *Server) listNotes(c *fiber.Ctx) error {
	list, err := s.store(c).List(c.UserContext())
	if err != nil {
		return err
	}
	if list == nil {
		list = []notes.Note{}
	}
	return c.JSON(list)
}

func (s *Server) createNote(c *fiber.Ctx) error {
	var req createNoteRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	note, err := s.store(c).Create(c.UserContext(), req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) getNote(c *fiber.Ctx) error {
	note, err := s.store(c).Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) updateNote(c *fiber.Ctx) error {
	var patch notes.Patch
	if err := bind(c, &patch); err != nil {
		return err
	}
	note, err := s.store(c).Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) deleteNote(c *fiber.Ctx) error {
	if err := s.store(c).Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) editLecture(c *fiber.Ctx) error {
	var req assist.EditRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	modified, err := s.deps.Assist.Edit(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(assist.EditResponse{ModifiedText: modified})
}

func (s *Server) processLecture(c *fiber.Ctx) error {
	var req assist.LectureRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	processed, err := s.deps.Assist.Process(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(assist.LectureResponse{ProcessedContent: processed})
}

func (s *Server) generateDiagram(c *fiber.Ctx) error {
	var req assist.DiagramRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperr.Invalid("text must not be empty")
	}
	source, err := s.deps.Assist.Generate(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(assist.DiagramResponse{Diagram: source})
}

func (s *Server) chat(c *fiber.Ctx) error {
	var req assist.ChatRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reply, err := s.deps.Assist.Send(c.UserContext(), req.History, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(assist.ChatResponse{Reply: reply})
}
