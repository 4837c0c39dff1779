// Package schedule turns a child's date of birth into a dated checklist of
// immunisations, government registrations, milestones and health checks.
package schedule

import "github.com/cradlehq/backend/internal/models"

// TablesVersion identifies the built-in reference data. Items already
// materialised from an older version are never rewritten.
const TablesVersion = "au-2025.1"

// Immunisation is one visit on the national immunisation schedule
type Immunisation struct {
	ID          string
	Title       string
	Description string
	AgeInWeeks  int
	IsRequired  bool
	Vaccines    []string
}

// Registration is a government or administrative task after birth
type Registration struct {
	ID             string
	Title          string
	Description    string
	DaysAfterBirth int
	Priority       models.Priority
	Requirements   []string
	Links          map[string]string // jurisdiction -> URL
}

// Milestone is a developmental milestone to watch for
type Milestone struct {
	ID            string
	Title         string
	Description   string
	AgeInMonths   int
	IsOptional    bool
	MilestoneType string
}

// Checkup is a routine child health check
type Checkup struct {
	ID          string
	Title       string
	Description string
	AgeInWeeks  int
}

// Tables is one versioned set of reference data
type Tables struct {
	Version       string
	Immunisations []Immunisation
	Registrations []Registration
	Milestones    []Milestone
	Checkups      []Checkup
}

// Jurisdictions with jurisdiction-specific registration links
var Jurisdictions = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

// DefaultTables returns the built-in reference data
func DefaultTables() Tables {
	return Tables{
		Version:       TablesVersion,
		Immunisations: immunisations(),
		Registrations: registrations(),
		Milestones:    milestones(),
		Checkups:      checkups(),
	}
}

func immunisations() []Immunisation {
	return []Immunisation{
		{
			ID:          "imm-birth",
			Title:       "Birth immunisation",
			Description: "Hepatitis B vaccine, usually given in hospital within 7 days of birth.",
			AgeInWeeks:  0,
			IsRequired:  true,
			Vaccines:    []string{"Hepatitis B"},
		},
		{
			ID:          "imm-6w",
			Title:       "6 week immunisations",
			Description: "Can be given from 6 weeks of age.",
			AgeInWeeks:  6,
			IsRequired:  true,
			Vaccines:    []string{"DTPa-hepB-IPV-Hib", "Pneumococcal", "Rotavirus", "Meningococcal B"},
		},
		{
			ID:          "imm-4m",
			Title:       "4 month immunisations",
			Description: "Second dose of the infant primary course.",
			AgeInWeeks:  17,
			IsRequired:  true,
			Vaccines:    []string{"DTPa-hepB-IPV-Hib", "Pneumococcal", "Rotavirus", "Meningococcal B"},
		},
		{
			ID:          "imm-6m",
			Title:       "6 month immunisations",
			Description: "Third dose of the infant primary course.",
			AgeInWeeks:  26,
			IsRequired:  true,
			Vaccines:    []string{"DTPa-hepB-IPV-Hib"},
		},
		{
			ID:          "imm-influenza",
			Title:       "Annual influenza vaccine",
			Description: "Recommended every year from 6 months of age.",
			AgeInWeeks:  27,
			IsRequired:  false,
			Vaccines:    []string{"Influenza"},
		},
		{
			ID:          "imm-12m",
			Title:       "12 month immunisations",
			Description: "First birthday vaccines.",
			AgeInWeeks:  52,
			IsRequired:  true,
			Vaccines:    []string{"Meningococcal ACWY", "MMR", "Pneumococcal", "Meningococcal B"},
		},
		{
			ID:          "imm-18m",
			Title:       "18 month immunisations",
			Description: "Booster doses.",
			AgeInWeeks:  78,
			IsRequired:  true,
			Vaccines:    []string{"DTPa", "Hib", "MMRV"},
		},
		{
			ID:          "imm-4y",
			Title:       "4 year immunisations",
			Description: "Pre-school booster.",
			AgeInWeeks:  208,
			IsRequired:  true,
			Vaccines:    []string{"DTPa-IPV"},
		},
	}
}

func registrations() []Registration {
	return []Registration{
		{
			ID:             "reg-birth",
			Title:          "Register the birth",
			Description:    "Register your baby's birth with your state or territory registry.",
			DaysAfterBirth: 60,
			Priority:       models.PriorityHigh,
			Requirements:   []string{"Parent ID", "Hospital birth details"},
			Links: map[string]string{
				"NSW": "https://www.nsw.gov.au/family-and-relationships/register-birth",
				"VIC": "https://www.bdm.vic.gov.au/births/registering-a-birth",
				"QLD": "https://www.qld.gov.au/law/births-deaths-marriages-and-divorces/birth-death-and-marriage-registration/registering-a-birth",
				"WA":  "https://www.wa.gov.au/service/community-services/births-deaths-and-marriages/register-birth",
				"SA":  "https://www.sa.gov.au/topics/family-and-community/births-deaths-and-marriages/births/registering-a-birth",
				"TAS": "https://www.justice.tas.gov.au/bdm/births/registering_a_birth",
				"ACT": "https://www.accesscanberra.act.gov.au/s/article/register-a-birth-tab-overview",
				"NT":  "https://nt.gov.au/law/bdm/register-a-birth",
			},
		},
		{
			ID:             "reg-medicare",
			Title:          "Enrol in Medicare",
			Description:    "Add your baby to your Medicare card.",
			DaysAfterBirth: 30,
			Priority:       models.PriorityHigh,
			Requirements:   []string{"Newborn Child Declaration", "Parent Medicare card"},
			Links: map[string]string{
				"ALL": "https://www.servicesaustralia.gov.au/enrolling-your-baby-medicare",
			},
		},
		{
			ID:             "reg-centrelink",
			Title:          "Claim family payments",
			Description:    "Lodge a claim for Family Tax Benefit and Parental Leave Pay.",
			DaysAfterBirth: 28,
			Priority:       models.PriorityMedium,
			Requirements:   []string{"Birth registration", "Tax file number", "Bank details"},
			Links: map[string]string{
				"ALL": "https://www.servicesaustralia.gov.au/newborn-child-declaration",
			},
		},
		{
			ID:             "reg-air",
			Title:          "Check immunisation register",
			Description:    "Confirm your baby is listed on the Australian Immunisation Register.",
			DaysAfterBirth: 56,
			Priority:       models.PriorityLow,
			Requirements:   []string{"Medicare enrolment"},
			Links: map[string]string{
				"ALL": "https://www.servicesaustralia.gov.au/australian-immunisation-register",
			},
		},
		{
			ID:             "reg-childcare",
			Title:          "Join a childcare waitlist",
			Description:    "Waitlists can be long. Put your name down early if you plan to use care.",
			DaysAfterBirth: 90,
			Priority:       models.PriorityLow,
			Requirements:   []string{"Birth certificate"},
			Links: map[string]string{
				"ALL": "https://www.startingblocks.gov.au",
			},
		},
	}
}

func milestones() []Milestone {
	return []Milestone{
		{ID: "ms-smile", Title: "First social smile", Description: "Smiles back when smiled at.", AgeInMonths: 2, MilestoneType: "social"},
		{ID: "ms-head", Title: "Holds head steady", Description: "Holds head up without support when held upright.", AgeInMonths: 4, MilestoneType: "motor"},
		{ID: "ms-roll", Title: "Rolls over", Description: "Rolls from tummy to back and back to tummy.", AgeInMonths: 6, MilestoneType: "motor"},
		{ID: "ms-solids", Title: "Starts solid food", Description: "Shows interest in food and can sit with support.", AgeInMonths: 6, MilestoneType: "feeding"},
		{ID: "ms-sit", Title: "Sits without support", Description: "Sits up steadily on their own.", AgeInMonths: 9, MilestoneType: "motor"},
		{ID: "ms-crawl", Title: "Crawls", Description: "Moves around on hands and knees.", AgeInMonths: 9, IsOptional: true, MilestoneType: "motor"},
		{ID: "ms-words", Title: "First words", Description: "Says one or two words like \"mama\" or \"dada\".", AgeInMonths: 12, MilestoneType: "language"},
		{ID: "ms-walk", Title: "Walks", Description: "Takes steps without holding on.", AgeInMonths: 15, MilestoneType: "motor"},
		{ID: "ms-sentences", Title: "Two-word phrases", Description: "Puts two words together.", AgeInMonths: 24, MilestoneType: "language"},
	}
}

func checkups() []Checkup {
	return []Checkup{
		{ID: "chk-1w", Title: "1-4 week health check", Description: "First check with the child and family health nurse.", AgeInWeeks: 1},
		{ID: "chk-6w", Title: "6-8 week health check", Description: "GP check of growth, hips, eyes and heart.", AgeInWeeks: 6},
		{ID: "chk-6m", Title: "6 month health check", Description: "Growth, development and feeding review.", AgeInWeeks: 26},
		{ID: "chk-12m", Title: "12 month health check", Description: "Growth, vision and development review.", AgeInWeeks: 52},
		{ID: "chk-18m", Title: "18 month health check", Description: "Development, language and behaviour review.", AgeInWeeks: 78},
		{ID: "chk-2y", Title: "2 year health check", Description: "Growth and development review.", AgeInWeeks: 104},
		{ID: "chk-3y", Title: "3 year health check", Description: "Development, vision and hearing review.", AgeInWeeks: 156},
		{ID: "chk-4y", Title: "4 year health check", Description: "Pre-school health and development check.", AgeInWeeks: 208},
	}
}
