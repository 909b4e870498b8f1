// Package validation checks request input with struct tags
// (go-playground/validator) and returns *errors.AppError values.
//
//	type TranscribeQuery struct {
//	    VideoURL string `form:"video_url" validate:"required,http_url"`
//	}
//	err := validation.Validate(q)
//
// Fields that are not struct-shaped, such as multipart parts, are checked
// with the programmatic Validator:
//
//	v := validation.New()
//	v.Check(header != nil, "file", "is required")
//	if err := v.Validate(); err != nil { ... }
package validation
