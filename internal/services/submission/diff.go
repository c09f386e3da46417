package submission

import (
	"fmt"
	"strings"

	"github.com/crescendorewards/backend/internal/models"
)

// FieldChange is one changed field in a version comparison, with display
// formatted old and new values
type FieldChange struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Diff partitions the compared fields into changed and unchanged. It is a
// display aid for reviewers only; nothing decides whether a resubmission is
// "real" from it.
type Diff struct {
	Changed   []FieldChange `json:"changed"`
	Unchanged []string      `json:"unchanged"`
}

// diffField describes one entry of the fixed comparison field list. raw is
// compared with strict inequality (0 vs null counts as changed); display is
// what the reviewer sees.
type diffField struct {
	name    string
	label   string
	raw     func(*models.RewardSubmission) string
	display func(*models.RewardSubmission) string
}

const nilMarker = "\x00<nil>"

func stringPtrRaw(p *string) string {
	if p == nil {
		return nilMarker
	}
	return *p
}

func stringPtrDisplay(p *string) string {
	if p == nil {
		return "—"
	}
	return *p
}

// humanize turns a snake_case enum value into display text
func humanize(v string) string {
	words := strings.Split(v, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var diffFields = []diffField{
	{
		name:    "title",
		label:   "Title",
		raw:     func(s *models.RewardSubmission) string { return s.Title },
		display: func(s *models.RewardSubmission) string { return s.Title },
	},
	{
		name:    "description",
		label:   "Description",
		raw:     func(s *models.RewardSubmission) string { return s.Description },
		display: func(s *models.RewardSubmission) string { return s.Description },
	},
	{
		name:    "category",
		label:   "Category",
		raw:     func(s *models.RewardSubmission) string { return s.Category },
		display: func(s *models.RewardSubmission) string { return humanize(s.Category) },
	},
	{
		name:    "brand",
		label:   "Brand",
		raw:     func(s *models.RewardSubmission) string { return stringPtrRaw(s.Brand) },
		display: func(s *models.RewardSubmission) string { return stringPtrDisplay(s.Brand) },
	},
	{
		name:    "reward_type",
		label:   "Reward type",
		raw:     func(s *models.RewardSubmission) string { return string(s.RewardType) },
		display: func(s *models.RewardSubmission) string { return humanize(string(s.RewardType)) },
	},
	{
		name:    "floor_usd_amount",
		label:   "Floor amount",
		raw:     func(s *models.RewardSubmission) string { return fmt.Sprintf("%v", s.FloorUSDAmount) },
		display: func(s *models.RewardSubmission) string { return fmt.Sprintf("$%.2f", s.FloorUSDAmount) },
	},
	{
		name:    "lock_option",
		label:   "Lock option",
		raw:     func(s *models.RewardSubmission) string { return s.LockOption },
		display: func(s *models.RewardSubmission) string { return s.LockOption + " LOCK" },
	},
	{
		name:    "nctr_value",
		label:   "NCTR value",
		raw:     func(s *models.RewardSubmission) string { return fmt.Sprintf("%d", s.NctrValue) },
		display: func(s *models.RewardSubmission) string { return fmt.Sprintf("%d NCTR", s.NctrValue) },
	},
	{
		name:    "claims_required",
		label:   "Claims required",
		raw:     func(s *models.RewardSubmission) string { return fmt.Sprintf("%d", s.ClaimsRequired) },
		display: func(s *models.RewardSubmission) string { return fmt.Sprintf("%d", s.ClaimsRequired) },
	},
	{
		name:    "stock_quantity",
		label:   "Stock quantity",
		raw:     func(s *models.RewardSubmission) string { return fmt.Sprintf("%d", s.StockQuantity) },
		display: func(s *models.RewardSubmission) string { return fmt.Sprintf("%d", s.StockQuantity) },
	},
	{
		name:    "image_url",
		label:   "Image",
		raw:     func(s *models.RewardSubmission) string { return s.ImageURL },
		display: func(s *models.RewardSubmission) string { return s.ImageURL },
	},
}

// DiffSubmissions compares two versions field by field over the fixed field
// list. Pure and deterministic: identical inputs always produce identical
// output, and comparing a version with itself yields no changed fields.
func DiffSubmissions(previous, current *models.RewardSubmission) Diff {
	diff := Diff{
		Changed:   []FieldChange{},
		Unchanged: []string{},
	}

	for _, f := range diffFields {
		if f.raw(previous) != f.raw(current) {
			diff.Changed = append(diff.Changed, FieldChange{
				Field: f.name,
				Label: f.label,
				Old:   f.display(previous),
				New:   f.display(current),
			})
		} else {
			diff.Unchanged = append(diff.Unchanged, f.name)
		}
	}

	return diff
}
