package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/models"
	"example.com/travel-planner/backend/internal/rates"
)

const dateLayout = "2006-01-02"

// ExportJSON выгружает маршрут в JSON-файл.
func (h *ItineraryHandler) ExportJSON(c echo.Context) error {
	saved, ok, err := h.load(c)
	if !ok {
		return err
	}

	setAttachment(c, exportFilename(saved, "json"))
	return c.JSON(http.StatusOK, saved)
}

// ExportCSV выгружает элементы маршрута, по строке на элемент.
func (h *ItineraryHandler) ExportCSV(c echo.Context) error {
	saved, ok, err := h.load(c)
	if !ok {
		return err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeItineraryCSV(writer, saved); err != nil {
		return serverError(c)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	setAttachment(c, exportFilename(saved, "csv"))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportPDF выгружает маршрут в PDF с разбивкой бюджета.
func (h *ItineraryHandler) ExportPDF(c echo.Context) error {
	saved, ok, err := h.load(c)
	if !ok {
		return err
	}

	var buf bytes.Buffer
	if err := writeItineraryPDF(&buf, saved); err != nil {
		return serverError(c)
	}

	setAttachment(c, exportFilename(saved, "pdf"))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// ExportICS выгружает маршрут в iCalendar: одно событие на весь день для
// каждого элемента, первый день берется из ?start=YYYY-MM-DD.
func (h *ItineraryHandler) ExportICS(c echo.Context) error {
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := strings.TrimSpace(c.QueryParam("start")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return badRequest(c, "invalid start date")
		}
		start = parsed
	}

	saved, ok, err := h.load(c)
	if !ok {
		return err
	}

	setAttachment(c, exportFilename(saved, "ics"))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(buildCalendar(saved, start)))
}

func writeItineraryCSV(writer *csv.Writer, saved models.SavedItinerary) error {
	header := []string{
		"itinerary_id",
		"itinerary_name",
		"day",
		"item_id",
		"type",
		"name",
		"location",
		"duration",
		"price",
		"currency",
		"description",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, day := range saved.Itinerary {
		for _, item := range day.Items {
			row := []string{
				saved.ID.String(),
				saved.Name,
				strconv.Itoa(day.Day),
				item.ID,
				string(item.Kind),
				item.Name,
				item.Location,
				item.Duration,
				strconv.FormatFloat(item.Price, 'f', 2, 64),
				item.Currency,
				item.Description,
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeItineraryPDF(buf *bytes.Buffer, saved models.SavedItinerary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(saved.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(saved.Name), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	subtitle := fmt.Sprintf("%d days, %d travelers, budget %s", saved.TripLength, saved.Travelers, rates.Format(saved.Budget, saved.Currency))
	if saved.Destination != "" {
		subtitle = saved.Destination + " - " + subtitle
	}
	pdf.CellFormat(0, 7, tr(subtitle), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	breakdown := budget.BreakdownOf(saved.BudgetPlan, saved.Itinerary)
	plan := breakdown.Plan
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Budget", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	categories := []struct {
		label string
		value float64
	}{
		{"Accommodation", plan.Accommodation},
		{"Food", plan.Food},
		{"Activities", plan.Activities},
		{"Transport", plan.Transport},
		{"Spent", breakdown.Spent.Total},
		{"Remaining", breakdown.Remaining},
	}
	for _, category := range categories {
		pdf.CellFormat(50, 6, category.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(rates.Format(category.value, plan.Currency)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	for _, day := range saved.Itinerary {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Day %d", day.Day), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, item := range day.Items {
			line := fmt.Sprintf("[%s] %s", item.Kind, item.Name)
			if item.Location != "" {
				line += ", " + item.Location
			}
			if item.Price > 0 {
				line += " (" + rates.Format(item.Price, item.Currency) + ")"
			}
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
			if item.Description != "" {
				pdf.SetFont("Helvetica", "I", 9)
				pdf.MultiCell(0, 5, tr(item.Description), "", "L", false)
				pdf.SetFont("Helvetica", "", 10)
			}
		}
		pdf.Ln(2)
	}

	return pdf.Output(buf)
}

func buildCalendar(saved models.SavedItinerary, start time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//travel-planner//itinerary//EN")
	cal.SetName(saved.Name)

	stamp := saved.UpdatedAt.UTC()
	if stamp.IsZero() {
		stamp = time.Now().UTC()
	}

	for _, day := range saved.Itinerary {
		date := start.AddDate(0, 0, day.Day-1)
		for _, item := range day.Items {
			event := cal.AddEvent(fmt.Sprintf("%s-%d-%s@travel-planner", saved.ID, day.Day, item.ID))
			event.SetDtStampTime(stamp)
			event.SetAllDayStartAt(date)
			event.SetAllDayEndAt(date.AddDate(0, 0, 1))
			event.SetSummary(item.Name)
			if item.Location != "" {
				event.SetLocation(item.Location)
			}
			description := string(item.Kind)
			if item.Price > 0 {
				description += ", " + rates.Format(item.Price, item.Currency)
			}
			if item.Description != "" {
				description += ". " + item.Description
			}
			event.SetDescription(description)
		}
	}
	return cal.Serialize()
}

func exportFilename(saved models.SavedItinerary, ext string) string {
	return "itinerary-" + saved.ID.String() + "." + ext
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
}
