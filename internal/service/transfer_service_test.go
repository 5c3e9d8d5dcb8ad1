package service

import (
	"context"
	"encoding/csv"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

func TestTransferServiceImportPods(t *testing.T) {
	store := newTestStore(t)
	svc := NewTransferService(store, testLogger())
	ctx := context.Background()

	upload := strings.Join([]string{
		"FirstName,LASTNAME,homeroom,podNumber,Roles,sharedRole",
		`ana,lopez,7c,2,"Script Writer, Lead Researcher",true`,
		"Ben,Ray,7C,2,Script Writer,yes",
		"Cy,Moe,7C,,,",
		"Zed,Nobody,7C,1,,",
	}, "\n")

	summary, err := svc.ImportPods(ctx, []byte(upload))
	require.NoError(t, err)
	require.Equal(t, 4, summary.Rows)
	require.Equal(t, 2, summary.Matched)
	require.Equal(t, 2, summary.Skipped)
	require.Equal(t, int64(1), summary.Revision)

	snapshot := store.State()
	ana, _, _ := snapshot.FindStudent(snapshot.Students[0].ID)
	require.Equal(t, 2, *ana.PodNumber)
	require.Equal(t, []string{"Script Writer", "Lead Researcher"}, ana.Roles)
	require.Equal(t, []string{snapshot.Students[1].ID}, ana.SharedRoles["Script Writer"])
	require.Len(t, snapshot.Pods["1_2"].Members, 2)
}

func TestTransferServiceImportRejectsBadUploads(t *testing.T) {
	store := newTestStore(t)
	svc := NewTransferService(store, testLogger())
	ctx := context.Background()

	_, err := svc.ImportPods(ctx, []byte("firstName,lastName,podNumber\nAna,Lopez,1\n"))
	require.ErrorIs(t, err, ErrMissingColumns)
	require.Contains(t, err.Error(), "homeroom")

	_, err = svc.ImportPods(ctx, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
	require.ErrorIs(t, err, ErrUnsupportedUpload)

	_, err = svc.ImportPods(ctx, []byte("firstName,lastName,homeroom,podNumber\n"))
	require.ErrorIs(t, err, ErrEmptyUpload)

	require.Equal(t, int64(0), store.State().Revision)
}

func TestTransferServiceExports(t *testing.T) {
	store := newTestStore(t)
	svc := NewTransferService(store, testLogger())
	ctx := context.Background()
	s := store.State()
	ana, ben, dev := s.Students[0].ID, s.Students[1].ID, s.Students[3].ID

	store.Dispatch(ctx, state.AssignPod(ben, 1, 1))
	store.Dispatch(ctx, state.AssignPod(ana, 1, 1))
	store.Dispatch(ctx, state.AssignPod(dev, 8, 2))
	store.Dispatch(ctx, state.AssignRoles(ana, []string{"Script Writer"}, map[string][]string{"Script Writer": {}}))
	store.Dispatch(ctx, state.AddAssessment(models.AssessmentInput{
		AssessorID: ben, AssesseeID: ana, PodID: "1_1",
		RoleScores: map[string]int{"sw1": 4}, GeneralScores: map[string]int{"g1": 4},
	}))

	pods, err := svc.ExportPods()
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(pods)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, podExportHeader, records[0])
	require.Equal(t, []string{"Ana", "Lopez", "7C", "1", "1", "Script Writer", "Script Writer"}, records[1])
	require.Equal(t, "Dev", records[3][0])

	roundTrip, err := ParsePodImport(bytes.NewReader(pods))
	require.NoError(t, err)
	require.Len(t, roundTrip, 3)
	require.Equal(t, []string{"Script Writer"}, roundTrip[0].SharedRoles)

	grades, err := svc.ExportGrades(models.IntPtr(1))
	require.NoError(t, err)
	records, err = csv.NewReader(bytes.NewReader(grades)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, gradeExportHeader, records[0])
	require.Equal(t, []string{"80.0", "0.0", "0.0", "80.0", "B", "1"}, records[1][6:])
	require.Equal(t, []string{"", "", "", "", "", "0"}, records[2][6:])
}
