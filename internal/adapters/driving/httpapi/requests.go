package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/listingtrail/internal/core/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bind decodes a JSON body into req and validates it. Every failure is an
// invalid argument.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("decoding request body: %v: %w", err, domain.ErrInvalidArgument)
	}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", describeValidation(err), domain.ErrInvalidArgument)
	}
	return nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("%s %q is not a UUID", fe.Field(), fe.Value()))
		case "eq":
			msgs = append(msgs, fmt.Sprintf("%s must be %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func init() {
	// Report JSON names rather than Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// versioned is embedded by request bodies that may carry schema_version.
type versioned struct {
	SchemaVersion string `json:"schema_version" validate:"omitempty,eq=v1"`
}

type compareRequest struct {
	versioned
	LeftID          string `json:"listing_id_left" validate:"required,uuid"`
	RightID         string `json:"listing_id_right" validate:"required,uuid"`
	LeftSnapshotID  string `json:"snapshot_id_left"`
	RightSnapshotID string `json:"snapshot_id_right"`
}

type nearMissRequest struct {
	versioned
	SearchSpecID string `json:"search_spec_id" validate:"required,uuid"`
	// Threshold is checked by the service so that NaN and out-of-range
	// values are reported the same way on every surface.
	Threshold *float64 `json:"threshold" validate:"required"`
}

type createSnapshotRequest struct {
	versioned
	URL        string     `json:"url" validate:"required,url"`
	Text       string     `json:"text"`
	HTML       string     `json:"html"`
	SourceID   string     `json:"source_id"`
	CapturedAt *time.Time `json:"captured_at"`
}

type citeRequest struct {
	versioned
	SnapshotID string `json:"snapshot_id" validate:"required"`
	Excerpt    string `json:"excerpt" validate:"required_without=Start"`
	Start      *int   `json:"start_char" validate:"required_with=End"`
	End        *int   `json:"end_char" validate:"required_with=Start"`
}

type registerListingRequest struct {
	versioned
	ID           string `json:"listing_id" validate:"omitempty,uuid"`
	Title        string `json:"title" validate:"required"`
	Neighborhood string `json:"neighborhood"`
	SnapshotID   string `json:"snapshot_id"`
}

type applyChangeRequest struct {
	versioned
	ChangeID    string       `json:"listing_change_id" validate:"omitempty,uuid"`
	FieldPath   string       `json:"field_path" validate:"required"`
	OldValue    domain.Value `json:"old_value"`
	NewValue    domain.Value `json:"new_value"`
	EvidenceIDs []string     `json:"evidence_ids"`
	SnapshotID  string       `json:"snapshot_id"`
	Confidence  float64      `json:"confidence" validate:"gte=0,lte=1"`
	ChangedAt   *time.Time   `json:"changed_at"`
}

type createSearchSpecRequest struct {
	versioned
	ID        string              `json:"search_spec_id" validate:"omitempty,uuid"`
	Name      string              `json:"name"`
	RawPrompt string              `json:"raw_prompt"`
	Hard      []domain.Constraint `json:"hard"`
}

type transitionRequest struct {
	versioned
	Status string `json:"status" validate:"required,oneof=open acknowledged dismissed"`
}
