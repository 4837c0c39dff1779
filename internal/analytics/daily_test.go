package analytics

import (
	"testing"
	"time"

	"github.com/cradlehq/backend/internal/models"
)

func TestAggregateDaily_OnlyDatesWithEvents(t *testing.T) {
	events := []models.Activity{
		feed(at(2, 9, 0), models.SubtypeBottle),
		feed(at(0, 7, 0), models.SubtypeBreast),
		nappy(at(2, 10, 0), models.SubtypeWet),
	}

	got := AggregateDaily("child-1", events, at(0, 0, 0), at(3, 0, 0), time.UTC)

	if len(got) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(got))
	}
	if got[0].Date != "2024-03-01" || got[1].Date != "2024-03-03" {
		t.Errorf("dates = [%s %s], want [2024-03-01 2024-03-03]", got[0].Date, got[1].Date)
	}
	if got[0].ChildID != "child-1" {
		t.Errorf("ChildID = %q, want child-1", got[0].ChildID)
	}
}

func TestAggregateDaily_CountsMatchEventsInWindow(t *testing.T) {
	start, end := at(1, 0, 0), at(4, 0, 0)

	var events []models.Activity
	for day := 0; day < 6; day++ {
		for h := 0; h < day+1; h++ {
			events = append(events,
				feed(at(day, 6+h, 0), models.SubtypeBreast),
				sleepFor(at(day, 8+h, 30), 45),
				nappy(at(day, 9+h, 15), models.SubtypeDirty),
			)
		}
	}

	want := map[models.Category]int{}
	for _, e := range events {
		if !e.StartedAt.Before(start) && !e.StartedAt.After(end) {
			want[e.Category]++
		}
	}

	got := map[models.Category]int{}
	for _, d := range AggregateDaily("c", events, start, end, time.UTC) {
		got[models.CategoryFeeding] += d.Feeding.Count
		got[models.CategorySleep] += d.Sleep.Count
		got[models.CategoryNappy] += d.Nappy.Count
	}

	for _, c := range []models.Category{models.CategoryFeeding, models.CategorySleep, models.CategoryNappy} {
		if got[c] != want[c] {
			t.Errorf("sum of %s counts = %d, want %d", c, got[c], want[c])
		}
	}
}

func TestAggregateDaily_CategoryRules(t *testing.T) {
	end := at(0, 9, 30)
	events := []models.Activity{
		{Category: models.CategoryFeeding, Subtype: models.SubtypeBottle, StartedAt: at(0, 6, 0), DurationMinutes: ptr(20), AmountML: ptr(120)},
		{Category: models.CategoryFeeding, Subtype: models.SubtypeBreast, StartedAt: at(0, 9, 0), EndedAt: &end},
		feed(at(0, 12, 0), models.SubtypeBreast),
		sleepFor(at(0, 10, 0), 90),
		sleepFor(at(0, 14, 0), 30),
		nappy(at(0, 7, 0), models.SubtypeWet),
		nappy(at(0, 8, 0), models.SubtypeDirty),
		nappy(at(0, 11, 0), models.SubtypeMixed),
		nappy(at(0, 15, 0), models.SubtypeBoth),
		nappy(at(0, 16, 0), "dry"),
		tummy(at(0, 13, 0), 10),
		tummy(at(0, 17, 0), 5),
	}

	got := AggregateDaily("c", events, at(0, 0, 0), at(1, 0, 0), time.UTC)
	if len(got) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(got))
	}
	d := got[0]

	if d.Feeding != (models.FeedingTotals{Count: 3, DurationMinutes: 50, AmountML: 120}) {
		t.Errorf("Feeding = %+v, want {Count:3 DurationMinutes:50 AmountML:120}", d.Feeding)
	}
	if d.Sleep != (models.SleepTotals{Count: 2, DurationMinutes: 120}) {
		t.Errorf("Sleep = %+v, want {Count:2 DurationMinutes:120}", d.Sleep)
	}
	if d.Nappy != (models.NappyTotals{Count: 5, Wet: 1, Dirty: 1, Mixed: 2}) {
		t.Errorf("Nappy = %+v, want {Count:5 Wet:1 Dirty:1 Mixed:2}", d.Nappy)
	}
	if d.TummyTimeMinutes != 15 {
		t.Errorf("TummyTimeMinutes = %v, want 15", d.TummyTimeMinutes)
	}
}

func TestAggregateDaily_BucketsInLocation(t *testing.T) {
	sydney := time.FixedZone("AEDT", 11*60*60)
	// 14:00 UTC is 01:00 the next day in Sydney
	events := []models.Activity{feed(at(0, 14, 0), models.SubtypeBreast)}

	got := AggregateDaily("c", events, at(0, 0, 0), at(1, 0, 0), sydney)
	if len(got) != 1 || got[0].Date != "2024-03-02" {
		t.Fatalf("records = %+v, want one record dated 2024-03-02", got)
	}
}

func TestAggregateDaily_Empty(t *testing.T) {
	got := AggregateDaily("c", nil, at(0, 0, 0), at(7, 0, 0), time.UTC)
	if got == nil || len(got) != 0 {
		t.Errorf("AggregateDaily(nil) = %v, want empty non-nil slice", got)
	}
}
