package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/repository"
)

type childRequest struct {
	Name       string             `json:"name" validate:"required,max=100"`
	BirthDate  string             `json:"birth_date" validate:"required,datetime=2006-01-02"`
	School     models.SchoolInfo  `json:"school"`
	Activities string             `json:"activities" validate:"max=2000"`
	Medical    models.MedicalInfo `json:"medical"`
}

func (r childRequest) toChild(familyID int64, id string) (models.Child, error) {
	birth, err := models.ParseDate(r.BirthDate)
	if err != nil {
		return models.Child{}, fmt.Errorf("%w: birth_date: %v", models.ErrInvalidChild, err)
	}
	return models.Child{
		ID:         id,
		FamilyID:   familyID,
		Name:       r.Name,
		BirthDate:  birth,
		School:     r.School,
		Activities: r.Activities,
		Medical:    r.Medical,
	}, nil
}

// childStoreError keeps not-found and validation errors and reports the rest
// as an unavailable store.
func childStoreError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, models.ErrInvalidChild) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", planner.ErrStoreUnavailable, op, err)
}

// GET /api/families/:id/children
func (s *Server) listChildren(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	children, err := s.store.ListChildren(c.UserContext(), f.ID)
	if err != nil {
		return childStoreError("list children", err)
	}
	if children == nil {
		children = []models.Child{}
	}
	return jsonOK(c, children)
}

func (s *Server) getChild(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	child, err := s.store.GetChild(c.UserContext(), f.ID, c.Params("childID"))
	if err != nil {
		return childStoreError("get child", err)
	}
	return jsonOK(c, child)
}

func (s *Server) createChild(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	var body childRequest
	if err := s.bind(c, &body); err != nil {
		return err
	}
	child, err := body.toChild(f.ID, "")
	if err != nil {
		return err
	}
	if err := s.store.CreateChild(c.UserContext(), &child); err != nil {
		return childStoreError("create child", err)
	}
	return jsonCreated(c, child)
}

func (s *Server) updateChild(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	var body childRequest
	if err := s.bind(c, &body); err != nil {
		return err
	}
	child, err := body.toChild(f.ID, c.Params("childID"))
	if err != nil {
		return err
	}
	if err := s.store.UpdateChild(c.UserContext(), &child); err != nil {
		return childStoreError("update child", err)
	}
	return jsonOK(c, child)
}

func (s *Server) deleteChild(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteChild(c.UserContext(), f.ID, c.Params("childID")); err != nil {
		return childStoreError("delete child", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
