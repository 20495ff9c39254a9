package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/scout/internal/domain/model"
)

const (
	maxBodyBytes  = 64 << 10
	maxPhotoBytes = 8 << 20
)

// fieldRequest is the body of PATCH /drafts/{id}.
type fieldRequest struct {
	Field string `json:"field" validate:"required,draftfield"`
	Value string `json:"value" validate:"max=4000"`
}

// gradeRequest is the body of POST /drafts/{id}/grades.
type gradeRequest struct {
	Competency string `json:"competency" validate:"required"`
	Grade      string `json:"grade" validate:"required,oneof=A B C D E"`
}

// noteRequest is the body of PUT /drafts/{id}/notes.
type noteRequest struct {
	Competency string `json:"competency" validate:"required"`
	Note       string `json:"note" validate:"max=2000"`
}

func (g *gradeRequest) normalize() {
	g.Grade = strings.ToUpper(strings.TrimSpace(g.Grade))
}

// normalizer is implemented by requests that clean their input before validation.
type normalizer interface {
	normalize()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("draftfield", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name == model.FieldPosition || model.IsTextField(name)
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("decode", errors.New("empty body"))
		}
		return badRequest("decode", err)
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	if err := v.Struct(dst); err != nil {
		return badRequest("validate", describeValidation(err))
	}
	return nil
}

// describeValidation flattens validator errors into "field: tag" pairs.
func describeValidation(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	sort.Strings(parts)
	return errors.New(strings.Join(parts, "; "))
}
