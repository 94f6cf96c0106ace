package validation

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid"
)

const (
	defaultPriority = 2

	titleMaxLength      = 255
	relatedURLMaxLength = 200
)

// Accepted finish_at layouts, widest first. Mirrors the ISO-8601 family the
// API has always accepted.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TaskData is a fully validated task payload. Tags is nil when the field was
// omitted, which leaves existing associations untouched on update.
type TaskData struct {
	Title        string
	Description  string
	Priority     int
	Completed    bool
	FinishAt     *time.Time
	ParentTaskID *uuid.UUID
	Tags         *[]uuid.UUID
	Attachment   *string
	RelatedURL   *string
	Image        *string
	ExtraData    json.RawMessage
}

// ValidateTask checks every field of the payload and reports all violations
// together; it never stops at the first failure. The returned data is only
// meaningful when the error map is empty, except for Tags, which callers
// may still need to resolve so relation errors are reported alongside the
// rest. Client-supplied id, user and created_at values are ignored.
func ValidateTask(p Payload) (*TaskData, FieldErrors) {
	errs := FieldErrors{}
	data := &TaskData{Priority: defaultPriority}

	validateRequiredString(p, "title", titleMaxLength, &data.Title, errs)

	if p.Has("description") {
		if p.Null("description") {
			errs.Add("description", MsgNotNull)
		} else if s, ok := p.String("description"); ok {
			data.Description = s
		} else {
			errs.Add("description", MsgNotAString)
		}
	}

	if p.Has("priority") {
		switch n, ok := p.Int("priority"); {
		case p.Null("priority"):
			errs.Add("priority", MsgNotNull)
		case !ok:
			errs.Add("priority", MsgNotAnInteger)
		case n < 1:
			errs.Add("priority", MsgPriorityMin)
		case n > 3:
			errs.Add("priority", MsgPriorityMax)
		default:
			data.Priority = n
		}
	}

	if p.Has("completed") {
		if p.Null("completed") {
			errs.Add("completed", MsgNotNull)
		} else if b, ok := p.Bool("completed"); ok {
			data.Completed = b
		} else {
			errs.Add("completed", MsgNotABoolean)
		}
	}

	if p.Has("finish_at") && !p.Null("finish_at") {
		if s, ok := p.String("finish_at"); ok {
			if ts, err := ParseDatetime(s); err == nil {
				data.FinishAt = &ts
			} else {
				errs.Add("finish_at", MsgDatetimeFormat)
			}
		} else {
			errs.Add("finish_at", MsgDatetimeFormat)
		}
	}

	if p.Has("parent_task") && !p.Null("parent_task") {
		if s, ok := p.String("parent_task"); ok {
			if id, err := uuid.FromString(s); err == nil {
				data.ParentTaskID = &id
			} else {
				errs.Add("parent_task", MsgInvalidPK(s))
			}
		} else {
			errs.Add("parent_task", MsgNotAString)
		}
	}

	if p.Has("tags") {
		if p.Null("tags") {
			errs.Add("tags", MsgNotNull)
		} else if list, ok := p.StringList("tags"); ok {
			ids := make([]uuid.UUID, 0, len(list))
			for _, raw := range list {
				id, err := uuid.FromString(raw)
				if err != nil {
					errs.Add("tags", MsgInvalidPK(raw))
					continue
				}
				ids = append(ids, id)
			}
			data.Tags = &ids
		} else {
			errs.Add("tags", MsgNotAList)
		}
	}

	validateOptionalString(p, "attachment", 0, &data.Attachment, errs)
	validateOptionalString(p, "related_url", relatedURLMaxLength, &data.RelatedURL, errs)
	validateOptionalString(p, "image", 0, &data.Image, errs)

	if raw, ok := p.Raw("extra_data"); ok {
		data.ExtraData = raw
	}

	return data, errs
}

// validateRequiredString enforces the required/null/blank/max-length chain
// shared by task titles and tag names. The stored value is trimmed of
// surrounding whitespace before the blank and length checks run.
func validateRequiredString(p Payload, field string, maxLength int, dest *string, errs FieldErrors) {
	switch {
	case !p.Has(field):
		errs.Add(field, MsgRequired)
	case p.Null(field):
		errs.Add(field, MsgNotNull)
	default:
		s, ok := p.String(field)
		if !ok {
			errs.Add(field, MsgNotAString)
			return
		}
		s = strings.TrimSpace(s)
		switch {
		case s == "":
			errs.Add(field, MsgNotBlank)
		case utf8.RuneCountInString(s) > maxLength:
			errs.Add(field, MsgMaxLength(maxLength))
		default:
			*dest = s
		}
	}
}

func validateOptionalString(p Payload, field string, maxLength int, dest **string, errs FieldErrors) {
	if !p.Has(field) || p.Null(field) {
		return
	}
	s, ok := p.String(field)
	if !ok {
		errs.Add(field, MsgNotAString)
		return
	}
	if maxLength > 0 && utf8.RuneCountInString(s) > maxLength {
		errs.Add(field, MsgMaxLength(maxLength))
		return
	}
	*dest = &s
}

// ParseDatetime parses a timestamp in any of the accepted layouts.
func ParseDatetime(s string) (time.Time, error) {
	var err error
	for _, layout := range datetimeLayouts {
		var ts time.Time
		if ts, err = time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, err
}
