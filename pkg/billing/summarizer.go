// Package billing aggregates time entries into billing totals and invoice
// line items. Functions are pure over entries loaded by the caller, with the
// entry's project resolved ahead of time.
package billing

import (
	"sort"
	"time"

	"github.com/housingpipeline/housingpipeline/pkg/model"
)

// NoProjectBucket is the rollup key for entries not tied to a project.
const NoProjectBucket = "No Project"

// generalProject labels invoice lines for entries without a project.
const generalProject = "General"

// Rollup tracks hours and billable value for one project or user bucket.
type Rollup struct {
	Hours         float64
	BillableHours float64
	Amount        float64
}

type Totals struct {
	TotalHours          float64
	TotalBillableHours  float64
	TotalAmount         float64
	TotalInvoicedAmount float64
	TotalUnbilledAmount float64
}

type Summary struct {
	Totals         Totals
	ProjectSummary map[string]*Rollup
	UserSummary    map[string]*Rollup
	EntriesCount   int
}

// Summarize computes billing totals plus per-project and per-user rollups.
// TotalAmount covers billable entries, TotalInvoicedAmount covers invoiced
// entries, and TotalUnbilledAmount covers billable entries not yet invoiced.
func Summarize(entries []model.TimeEntry) Summary {
	summary := Summary{
		ProjectSummary: make(map[string]*Rollup),
		UserSummary:    make(map[string]*Rollup),
		EntriesCount:   len(entries),
	}

	for i := range entries {
		e := &entries[i]
		amount := e.Amount()

		summary.Totals.TotalHours += e.Hours
		if e.IsBillable {
			summary.Totals.TotalBillableHours += e.Hours
			summary.Totals.TotalAmount += amount
			if !e.IsInvoiced {
				summary.Totals.TotalUnbilledAmount += amount
			}
		}
		if e.IsInvoiced {
			summary.Totals.TotalInvoicedAmount += amount
		}

		projectName := NoProjectBucket
		if e.Project != nil {
			projectName = e.Project.Name
		}
		addToRollup(summary.ProjectSummary, projectName, e)
		addToRollup(summary.UserSummary, e.UserName, e)
	}

	return summary
}

func addToRollup(buckets map[string]*Rollup, key string, e *model.TimeEntry) {
	bucket, ok := buckets[key]
	if !ok {
		bucket = &Rollup{}
		buckets[key] = bucket
	}
	bucket.Hours += e.Hours
	if e.IsBillable {
		bucket.BillableHours += e.Hours
		bucket.Amount += e.Amount()
	}
}

// InvoiceItem is one line of a draft invoice.
type InvoiceItem struct {
	EntryID     uint
	Date        time.Time
	ProjectName string
	Description string
	Hours       float64
	HourlyRate  float64
	LineTotal   float64
	UserName    string
}

type Invoice struct {
	Items       []InvoiceItem
	TotalAmount float64
	TotalHours  float64
}

// BuildInvoice extracts the billable, not-yet-invoiced entries as invoice
// lines sorted by date descending. The resulting ids are exactly the set a
// caller would pass to mark-invoiced next.
func BuildInvoice(entries []model.TimeEntry) Invoice {
	var invoice Invoice

	for i := range entries {
		e := &entries[i]
		if !e.IsBillable || e.IsInvoiced {
			continue
		}

		projectName := generalProject
		if e.Project != nil {
			projectName = e.Project.Name
		}

		lineTotal := e.Amount()
		invoice.Items = append(invoice.Items, InvoiceItem{
			EntryID:     e.ID,
			Date:        e.Date,
			ProjectName: projectName,
			Description: e.Description,
			Hours:       e.Hours,
			HourlyRate:  e.HourlyRate,
			LineTotal:   lineTotal,
			UserName:    e.UserName,
		})
		invoice.TotalAmount += lineTotal
		invoice.TotalHours += e.Hours
	}

	sort.SliceStable(invoice.Items, func(i, j int) bool {
		return invoice.Items[i].Date.After(invoice.Items[j].Date)
	})

	return invoice
}
