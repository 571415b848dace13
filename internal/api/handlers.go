package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hray3182/CoParent/internal/ics"
	"github.com/hray3182/CoParent/internal/models"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/recap"
	"github.com/hray3182/CoParent/internal/repository"
)

func familyID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid family id")
	}
	return id, nil
}

// family resolves the path family, so unknown ids answer 404 before any
// calendar work happens.
func (s *Server) family(c *fiber.Ctx) (*models.Family, error) {
	id, err := familyID(c)
	if err != nil {
		return nil, err
	}
	f, err := s.store.GetFamily(c.UserContext(), id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: get family: %v", planner.ErrStoreUnavailable, err)
	}
	return f, err
}

func (s *Server) bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	return s.validate.Struct(dst)
}

// GET /api/families/:id/recap?date=YYYY-MM-DD
func (s *Server) getRecap(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	today := models.DateOf(s.now(), f.Location())
	if q := c.Query("date"); q != "" {
		if today, err = models.ParseDate(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}
	res, err := s.planner.Recap(c.UserContext(), f.ID, today, recap.WithWeekStart(f.FirstWeekday()))
	if err != nil {
		return err
	}
	return jsonOK(c, toRecapResponse(res))
}

func (s *Server) previewPlan(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	var body planRequest
	if err := s.bind(c, &body); err != nil {
		return err
	}
	req, err := body.toRequest()
	if err != nil {
		return err
	}
	p, err := s.planner.PreviewPlan(c.UserContext(), f.ID, req)
	if err != nil {
		return err
	}
	return jsonOK(c, previewResponse{
		Events:   toEventResponses(p.Events),
		Overlaps: toEventResponses(p.Overlaps),
	})
}

func (s *Server) createPlan(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	var body planRequest
	if err := s.bind(c, &body); err != nil {
		return err
	}
	req, err := body.toRequest()
	if err != nil {
		return err
	}
	batch, err := s.planner.GeneratePlan(c.UserContext(), f.ID, req)
	if err != nil {
		return err
	}
	return jsonCreated(c, toEventResponses(batch))
}

// GET /api/families/:id/events[?start=&end=]
func (s *Server) listEvents(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	start, end := c.Query("start"), c.Query("end")
	if start == "" && end == "" {
		events, err := s.planner.Events(c.UserContext(), f.ID)
		if err != nil {
			return err
		}
		return jsonOK(c, toEventResponses(events))
	}
	from, err1 := models.ParseDate(start)
	to, err2 := models.ParseDate(end)
	if err1 != nil || err2 != nil || to.Before(from) {
		return fiber.NewError(fiber.StatusBadRequest, "start and end must both be YYYY-MM-DD, start first")
	}
	events, err := s.planner.EventsBetween(c.UserContext(), f.ID, from, to)
	if err != nil {
		return err
	}
	return jsonOK(c, toEventResponses(events))
}

func (s *Server) getEvent(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	e, err := s.planner.GetEvent(c.UserContext(), f.ID, c.Params("eventID"))
	if err != nil {
		return err
	}
	return jsonOK(c, toEventResponse(*e))
}

func (s *Server) createEvent(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	var body eventRequest
	if err := s.bind(c, &body); err != nil {
		return err
	}
	e, err := body.toEvent("")
	if err != nil {
		return err
	}
	if err := s.planner.CreateEvent(c.UserContext(), f.ID, &e); err != nil {
		return err
	}
	return jsonCreated(c, toEventResponse(e))
}

func (s *Server) updateEvent(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	var body eventRequest
	if err := s.bind(c, &body); err != nil {
		return err
	}
	e, err := body.toEvent(c.Params("eventID"))
	if err != nil {
		return err
	}
	if err := s.planner.UpdateEvent(c.UserContext(), f.ID, &e); err != nil {
		return err
	}
	return jsonOK(c, toEventResponse(e))
}

func (s *Server) deleteEvent(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	if err := s.planner.DeleteEvent(c.UserContext(), f.ID, c.Params("eventID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) exportCalendar(c *fiber.Ctx) error {
	f, err := s.family(c)
	if err != nil {
		return err
	}
	events, err := s.planner.Events(c.UserContext(), f.ID)
	if err != nil {
		return err
	}
	parents, err := s.store.ListParents(c.UserContext(), f.ID)
	if err != nil {
		return fmt.Errorf("%w: list parents: %v", planner.ErrStoreUnavailable, err)
	}
	data, err := ics.NewExporter(f.Name, ics.ParentNamer(parents...)).Bytes(events)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="family-%d.ics"`, f.ID))
	return c.Send(data)
}
