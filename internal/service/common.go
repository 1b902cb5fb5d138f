package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"trainingdesk/internal/apperr"
	"trainingdesk/internal/model"
	"trainingdesk/internal/rbac"
	ws "trainingdesk/internal/websocket"
	"trainingdesk/pkg/pagination"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// Notifier receives workflow events after their transaction commits.
type Notifier interface {
	Publish(evt ws.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(ws.Event) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// validateStruct runs the validate tags of req and reports the first failures as a Validation error.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindValidation, err, "invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return apperr.Validation("invalid request: %s", strings.Join(msgs, "; "))
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

func newAudit(actor *rbac.Actor, action, entityID, entityName string, details any) *model.AuditLog {
	var uid *uuid.UUID
	if actor != nil {
		id := actor.ID
		uid = &id
	}
	payload := ""
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			payload = string(b)
		}
	}
	return &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
}

// event describes a committed change. owner is the user the record belongs to.
func event(kind, entity string, id uuid.UUID, status string, actor *rbac.Actor, owner uuid.UUID) ws.Event {
	evt := ws.Event{
		Type:     kind,
		Entity:   entity,
		EntityID: id.String(),
		Status:   status,
		OwnerID:  owner.String(),
	}
	if actor != nil {
		evt.ActorID = actor.ID.String()
	}
	return evt
}

// Page is a slice of results with the total number of matching rows.
type Page[T any] = pagination.Page[T]

func normalizePage(page, limit int) (int, int) {
	p := pagination.New(page, limit)
	return p.Page, p.Limit
}

func newPage[T any](items []T, total int64, page, limit int) Page[T] {
	return pagination.NewPage(items, total, pagination.Params{Page: page, Limit: limit})
}
