package schedule

import (
	"math"
	"sort"
	"time"

	"github.com/cradlehq/backend/internal/dates"
	"github.com/cradlehq/backend/internal/models"
	"github.com/google/uuid"
)

// checklistNamespace scopes the name-based UUIDs of checklist items
var checklistNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cradle.app/checklist-items"))

// ItemID is the deterministic id of a checklist item. The same child,
// category and reference entry always map to the same id.
func ItemID(childID string, category models.ChecklistCategory, referenceID string) string {
	name := childID + "|" + string(category) + "|" + referenceID
	return uuid.NewSHA1(checklistNamespace, []byte(name)).String()
}

// Generate materialises every reference entry into a dated checklist item
// for one child. dob should be midnight of the birth date in the family's
// time zone; due dates inherit its location.
//
// Registration links are narrowed to jurisdiction when it is set and the
// entry has a link for it; otherwise every link is attached. The result is
// ordered by due date, keeping table order for equal dates.
func Generate(childID string, dob time.Time, jurisdiction string, tables Tables) []models.ChecklistItem {
	dob = dates.StartOfDay(dob)
	items := make([]models.ChecklistItem, 0,
		len(tables.Immunisations)+len(tables.Registrations)+len(tables.Milestones)+len(tables.Checkups))

	newItem := func(category models.ChecklistCategory, refID, title, description string, due time.Time, priority models.Priority, meta map[string]interface{}) models.ChecklistItem {
		meta["reference_id"] = refID
		meta["table_version"] = tables.Version
		return models.ChecklistItem{
			ID:          ItemID(childID, category, refID),
			ChildID:     childID,
			ReferenceID: refID,
			Title:       title,
			Description: description,
			DueDate:     due,
			Category:    category,
			Priority:    priority,
			Metadata:    meta,
		}
	}

	for _, imm := range tables.Immunisations {
		priority := models.PriorityHigh
		if !imm.IsRequired {
			priority = models.PriorityMedium
		}
		items = append(items, newItem(models.ChecklistImmunisation, imm.ID, imm.Title, imm.Description,
			dates.AddWeeks(dob, imm.AgeInWeeks), priority, map[string]interface{}{
				"age_in_weeks": imm.AgeInWeeks,
				"is_required":  imm.IsRequired,
				"vaccines":     append([]string(nil), imm.Vaccines...),
			}))
	}

	for _, reg := range tables.Registrations {
		items = append(items, newItem(models.ChecklistRegistration, reg.ID, reg.Title, reg.Description,
			dates.AddDays(dob, reg.DaysAfterBirth), reg.Priority, map[string]interface{}{
				"days_after_birth": reg.DaysAfterBirth,
				"requirements":     append([]string(nil), reg.Requirements...),
				"links":            FilterLinks(reg.Links, jurisdiction),
			}))
	}

	for _, ms := range tables.Milestones {
		priority := models.PriorityMedium
		if ms.IsOptional {
			priority = models.PriorityLow
		}
		items = append(items, newItem(models.ChecklistMilestone, ms.ID, ms.Title, ms.Description,
			dates.AddMonths(dob, ms.AgeInMonths), priority, map[string]interface{}{
				"age_in_months":  ms.AgeInMonths,
				"is_optional":    ms.IsOptional,
				"milestone_type": ms.MilestoneType,
			}))
	}

	for _, chk := range tables.Checkups {
		items = append(items, newItem(models.ChecklistCheckup, chk.ID, chk.Title, chk.Description,
			dates.AddWeeks(dob, chk.AgeInWeeks), models.PriorityMedium, map[string]interface{}{
				"age_in_weeks": chk.AgeInWeeks,
			}))
	}

	SortByDueDate(items)
	return items
}

// FilterLinks keeps only the jurisdiction's link when there is one
func FilterLinks(links map[string]string, jurisdiction string) map[string]string {
	if url, ok := links[jurisdiction]; ok && jurisdiction != "" {
		return map[string]string{jurisdiction: url}
	}
	out := make(map[string]string, len(links))
	for k, v := range links {
		out[k] = v
	}
	return out
}

// SortByDueDate orders items by due date, stable for equal dates
func SortByDueDate(items []models.ChecklistItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DueDate.Before(items[j].DueDate)
	})
}

// Upcoming returns incomplete items due within [now, now+days]
func Upcoming(items []models.ChecklistItem, now time.Time, days int) []models.ChecklistItem {
	until := now.AddDate(0, 0, days)
	out := make([]models.ChecklistItem, 0)
	for _, item := range items {
		if item.Completed {
			continue
		}
		if !item.DueDate.Before(now) && !item.DueDate.After(until) {
			out = append(out, item)
		}
	}
	return out
}

// Overdue returns incomplete items whose due date has passed
func Overdue(items []models.ChecklistItem, now time.Time) []models.ChecklistItem {
	out := make([]models.ChecklistItem, 0)
	for _, item := range items {
		if !item.Completed && item.DueDate.Before(now) {
			out = append(out, item)
		}
	}
	return out
}

// CompletedCount counts completed items
func CompletedCount(items []models.ChecklistItem) int {
	n := 0
	for _, item := range items {
		if item.Completed {
			n++
		}
	}
	return n
}

// CompletionPercentage is the rounded share of completed items, 0 when empty
func CompletionPercentage(items []models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	return int(math.Round(float64(CompletedCount(items)) / float64(len(items)) * 100))
}

// Count is the number of items Generate produces from tables
func (t Tables) Count() int {
	return len(t.Immunisations) + len(t.Registrations) + len(t.Milestones) + len(t.Checkups)
}
