// SPDX-License-Identifier: GPL-3.0-or-later
package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/CrawX/go-imap-dashboard/domain"
	"github.com/CrawX/go-imap-dashboard/log"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	InfoSheet   = "Info"
	EmailsSheet = "E-mails"
)

var emailsHeader = []interface{}{"Assunto", "Remetente", "Status", "Categoria", "Contagem"}

var ErrMissingSheet = errors.New("sheet missing in workbook")

// Workbook stores the dashboard snapshot in an xlsx file with an info and an e-mails sheet.
type Workbook struct {
	filename string
	l        *logrus.Logger
}

func NewWorkbook(filename string) *Workbook {
	return &Workbook{
		filename: filename,
		l:        log.Logger(log.LOG_WORKBOOK),
	}
}

// Load reads the snapshot, returning nil if the file does not exist. The e-mails sheet is
// required, a missing info sheet loads as zero counts.
func (w *Workbook) Load() (*domain.Snapshot, error) {
	_, err := os.Stat(w.filename)
	if errors.Is(err, os.ErrNotExist) {
		w.l.WithField("file", w.filename).Debug("No workbook yet")
		return nil, nil
	}

	f, err := excelize.OpenFile(w.filename)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	records, err := readEmails(f)
	if err != nil {
		return nil, err
	}

	info, err := readInfo(f)
	if err != nil {
		return nil, err
	}

	w.l.WithFields(logrus.Fields{"file": w.filename, "records": len(records)}).Debug("Loaded workbook")

	return &domain.Snapshot{
		Records: records,
		Info:    info,
	}, nil
}

func readEmails(f *excelize.File) ([]domain.DedupedRecord, error) {
	index, err := f.GetSheetIndex(EmailsSheet)
	if err != nil || index < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSheet, EmailsSheet)
	}

	rows, err := f.GetRows(EmailsSheet)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", EmailsSheet, err)
	}

	records := []domain.DedupedRecord{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		cells := make([]string, len(emailsHeader))
		copy(cells, row)

		status, err := domain.ParseStatus(cells[2])
		if err != nil {
			return nil, fmt.Errorf("could not read row %d: %w", i+1, err)
		}

		count, err := strconv.Atoi(cells[4])
		if err != nil {
			return nil, fmt.Errorf("could not read count in row %d: %w", i+1, err)
		}

		records = append(records, domain.DedupedRecord{
			ClassifiedRecord: domain.ClassifiedRecord{
				Subject:  cells[0],
				Sender:   cells[1],
				Status:   status,
				Category: cells[3],
			},
			OccurrenceCount: count,
		})
	}

	return records, nil
}

func readInfo(f *excelize.File) (domain.AggregateCounts, error) {
	info := domain.AggregateCounts{PerCategory: []domain.CategoryCount{}}

	index, err := f.GetSheetIndex(InfoSheet)
	if err != nil || index < 0 {
		return info, nil
	}

	rows, err := f.GetRows(InfoSheet)
	if err != nil {
		return info, fmt.Errorf("could not read %s: %w", InfoSheet, err)
	}
	if len(rows) == 0 {
		return info, nil
	}

	header := rows[0]
	values := make([]string, len(header))
	if len(rows) > 1 {
		copy(values, rows[1])
	}

	for i, name := range header {
		value := 0
		if len(values[i]) > 0 {
			value, err = strconv.Atoi(values[i])
			if err != nil {
				return info, fmt.Errorf("could not read %s value: %w", name, err)
			}
		}

		switch {
		case i == 0:
			info.Unread = value
		case i == 1:
			info.Recent = value
		default:
			info.PerCategory = append(info.PerCategory, domain.CategoryCount{Category: name, Count: value})
		}
	}

	return info, nil
}

// Save writes the snapshot to a temporary file next to the workbook and renames it over
// the workbook.
func (w *Workbook) Save(snapshot *domain.Snapshot) error {
	f, err := build(snapshot)
	if err != nil {
		return err
	}
	defer f.Close()

	dir, base := filepath.Split(w.filename)
	if len(dir) == 0 {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, ".~"+base+"*")
	if err != nil {
		return fmt.Errorf("could not create temporary workbook: %w", err)
	}

	err = f.Write(tmp)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write workbook: %w", err)
	}

	err = os.Rename(tmp.Name(), w.filename)
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not replace workbook: %w", err)
	}

	w.l.WithFields(logrus.Fields{"file": w.filename, "records": len(snapshot.Records)}).Info("Saved workbook")
	return nil
}

func build(snapshot *domain.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	err := f.SetSheetName("Sheet1", InfoSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not create %s sheet: %w", InfoSheet, err)
	}
	index, err := f.NewSheet(EmailsSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("could not create %s sheet: %w", EmailsSheet, err)
	}
	f.SetActiveSheet(index)

	err = writeInfo(f, snapshot.Info)
	if err == nil {
		err = writeEmails(f, snapshot.Records)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeInfo(f *excelize.File, info domain.AggregateCounts) error {
	header := []interface{}{domain.UnreadLabel, domain.RecentLabel}
	values := []interface{}{info.Unread, info.Recent}
	for _, c := range info.PerCategory {
		header = append(header, c.Category)
		values = append(values, c.Count)
	}

	if err := f.SetSheetRow(InfoSheet, "A1", &header); err != nil {
		return fmt.Errorf("could not write %s header: %w", InfoSheet, err)
	}
	if err := f.SetSheetRow(InfoSheet, "A2", &values); err != nil {
		return fmt.Errorf("could not write %s values: %w", InfoSheet, err)
	}

	return boldHeader(f, InfoSheet, len(header))
}

func writeEmails(f *excelize.File, records []domain.DedupedRecord) error {
	header := emailsHeader
	if err := f.SetSheetRow(EmailsSheet, "A1", &header); err != nil {
		return fmt.Errorf("could not write %s header: %w", EmailsSheet, err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Subject, r.Sender, r.Status.String(), r.Category, r.OccurrenceCount}
		if err := f.SetSheetRow(EmailsSheet, cell, &row); err != nil {
			return fmt.Errorf("could not write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(EmailsSheet, "A", "B", 45); err != nil {
		return err
	}
	if err := f.SetColWidth(EmailsSheet, "C", "D", 18); err != nil {
		return err
	}

	return boldHeader(f, EmailsSheet, len(header))
}

func boldHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("could not create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}

	return f.SetCellStyle(sheet, "A1", last, style)
}

func (w *Workbook) Close() error {
	return nil
}
