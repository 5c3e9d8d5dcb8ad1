package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/grading"
	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

var (
	// ErrMissingColumns indicates an import file without the required headers.
	ErrMissingColumns = errors.New("missing required columns")
	// ErrUnsupportedUpload indicates an import file that is not delimited text.
	ErrUnsupportedUpload = errors.New("unsupported upload type")
	// ErrEmptyUpload indicates an import file with no data rows.
	ErrEmptyUpload = errors.New("upload contains no rows")
)

var requiredImportColumns = []string{"firstname", "lastname", "homeroom", "podnumber"}

var podExportHeader = []string{"firstName", "lastName", "homeroom", "period", "podNumber", "roles", "sharedRoles"}

var gradeExportHeader = []string{
	"firstName", "lastName", "homeroom", "period", "podNumber", "roles",
	"peerScore", "teacherScore", "bonusPoints", "finalGrade", "letterGrade", "assessmentCount",
}

// TransferService imports pod assignments from CSV and exports roster and
// grade tables.
type TransferService interface {
	ImportPods(ctx context.Context, data []byte) (dto.ImportSummary, error)
	ExportPods() ([]byte, error)
	ExportGrades(period *int) ([]byte, error)
}

type transferService struct {
	store  *state.Store
	logger zerolog.Logger
}

// NewTransferService constructs the import/export service.
func NewTransferService(store *state.Store, logger zerolog.Logger) TransferService {
	return &transferService{
		store:  store,
		logger: logger.With().Str("component", "transfer_service").Logger(),
	}
}

func (s *transferService) ImportPods(ctx context.Context, data []byte) (dto.ImportSummary, error) {
	if !isDelimitedText(data) {
		return dto.ImportSummary{}, fmt.Errorf("%w: %s", ErrUnsupportedUpload, mimetype.Detect(data).String())
	}

	rows, err := ParsePodImport(bytes.NewReader(data))
	if err != nil {
		return dto.ImportSummary{}, err
	}

	snapshot := s.store.State()
	summary := dto.ImportSummary{Rows: len(rows), Unmatched: []string{}}
	for _, row := range rows {
		if state.MatchImportRow(snapshot, row) >= 0 {
			summary.Matched++
			continue
		}
		summary.Skipped++
		summary.Unmatched = append(summary.Unmatched, strings.TrimSpace(row.FirstName+" "+row.LastName)+" ("+row.Homeroom+")")
	}

	next := s.store.Dispatch(ctx, state.BulkImportPodData(rows))
	summary.Revision = next.Revision

	s.logger.Info().
		Int("rows", summary.Rows).
		Int("matched", summary.Matched).
		Int("skipped", summary.Skipped).
		Msg("pod assignments imported")
	return summary, nil
}

// ParsePodImport reads a pod assignment CSV. Headers are matched without
// regard to case; firstName, lastName, homeroom and podNumber are required.
func ParsePodImport(r io.Reader) ([]state.PodImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyUpload
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}

	missing := make([]string, 0)
	for _, name := range requiredImportColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	cell := func(record []string, names ...string) (string, bool) {
		for _, name := range names {
			if idx, ok := columns[name]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx]), true
			}
		}
		return "", false
	}

	rows := make([]state.PodImportRow, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		first, _ := cell(record, "firstname")
		last, _ := cell(record, "lastname")
		homeroom, _ := cell(record, "homeroom")
		if first == "" && last == "" {
			continue
		}

		row := state.PodImportRow{FirstName: first, LastName: last, Homeroom: homeroom}
		if raw, _ := cell(record, "podnumber"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				row.PodNumber = models.IntPtr(n)
			}
		}
		if raw, ok := cell(record, "roles", "role"); ok {
			row.Roles = splitRoleCell(raw)
		}
		if raw, ok := cell(record, "sharedroles", "sharedrole"); ok {
			switch strings.ToLower(raw) {
			case "true", "yes", "y", "1":
				row.SharedRoles = append([]string(nil), row.Roles...)
			case "false", "no", "n", "0":
			default:
				row.SharedRoles = splitRoleCell(raw)
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyUpload
	}
	return rows, nil
}

func (s *transferService) ExportPods() ([]byte, error) {
	snapshot := s.store.State()
	students := podMembersInOrder(snapshot, nil)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(podExportHeader); err != nil {
		return nil, err
	}
	for _, student := range students {
		record := []string{
			student.FirstName,
			student.LastName,
			student.Homeroom,
			strconv.Itoa(*student.Period),
			strconv.Itoa(*student.PodNumber),
			strings.Join(student.Roles, ", "),
			strings.Join(sharedRoleNames(student), ", "),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *transferService) ExportGrades(period *int) ([]byte, error) {
	snapshot := s.store.State()
	students := podMembersInOrder(snapshot, period)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(gradeExportHeader); err != nil {
		return nil, err
	}
	for _, student := range students {
		record := []string{
			student.FirstName,
			student.LastName,
			student.Homeroom,
			strconv.Itoa(*student.Period),
			strconv.Itoa(*student.PodNumber),
			strings.Join(student.Roles, ", "),
		}
		if grade, ok := grading.Calculate(student.ID, snapshot); ok {
			record = append(record,
				grade.PeerScore,
				grade.TeacherScore,
				grade.BonusPoints,
				grade.FinalGrade,
				grade.Letter(),
				strconv.Itoa(grade.AssessmentCount),
			)
		} else {
			record = append(record, "", "", "", "", "", "0")
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

// podMembersInOrder lists students that hold a pod, ordered by period, pod
// number and name.
func podMembersInOrder(snapshot models.AppState, period *int) []models.Student {
	out := make([]models.Student, 0, len(snapshot.Students))
	for _, student := range snapshot.Students {
		if !student.InPod() || student.Period == nil {
			continue
		}
		if period != nil && *student.Period != *period {
			continue
		}
		out = append(out, student)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if *a.Period != *b.Period {
			return *a.Period < *b.Period
		}
		if *a.PodNumber != *b.PodNumber {
			return *a.PodNumber < *b.PodNumber
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
	return out
}

func sharedRoleNames(student models.Student) []string {
	names := make([]string, 0, len(student.SharedRoles))
	for role := range student.SharedRoles {
		names = append(names, role)
	}
	sort.Strings(names)
	return names
}

func splitRoleCell(raw string) []string {
	return state.SplitRoles(strings.ReplaceAll(raw, ";", ","))
}

func isDelimitedText(data []byte) bool {
	if len(bytes.TrimSpace(data)) == 0 {
		return true
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/csv") || m.Is("text/plain") {
			return true
		}
	}
	return false
}
