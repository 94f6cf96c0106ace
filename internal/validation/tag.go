package validation

const tagNameMaxLength = 30

type TagData struct {
	Name string
}

// ValidateTag checks a tag payload. The owner is never read from input.
func ValidateTag(p Payload) (*TagData, FieldErrors) {
	errs := FieldErrors{}
	data := &TagData{}

	validateRequiredString(p, "name", tagNameMaxLength, &data.Name, errs)

	return data, errs
}
