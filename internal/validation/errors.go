package validation

import "fmt"

// FieldErrors maps a field name to the list of human-readable messages for
// every constraint it violated. It is the body of a 400 response.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

const (
	MsgRequired       = "This field is required."
	MsgNotNull        = "This field may not be null."
	MsgNotBlank       = "This field may not be blank."
	MsgNotAString     = "Not a valid string."
	MsgNotAnInteger   = "A valid integer is required."
	MsgNotABoolean    = "Must be a valid boolean."
	MsgNotAList       = "Expected a list of items."
	MsgPriorityMin    = "Value must be greater or equal to 1"
	MsgPriorityMax    = "Value must be less or equal to 3"
	MsgDatetimeFormat = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

func MsgMaxLength(limit int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", limit)
}

func MsgInvalidPK(id string) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", id)
}
