package state

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pod-grading-api/internal/models"
	"github.com/noah-isme/pod-grading-api/internal/roster"
)

// Reducer applies actions to snapshots. It never mutates its input: every
// change yields a new AppState that shares untouched slices and maps with the
// previous one.
type Reducer struct {
	NewID func() string
	Now   func() time.Time
	Seed  func() []models.StudentInput
}

// NewReducer returns a reducer backed by random uuids, the wall clock and the
// static seed roster.
func NewReducer() *Reducer {
	return &Reducer{
		NewID: uuid.NewString,
		Now:   time.Now,
		Seed:  roster.SeedStudents,
	}
}

// Initial builds a fresh snapshot from the seed roster.
func (r *Reducer) Initial() models.AppState {
	seed := r.Seed()
	students := make([]models.Student, 0, len(seed))
	for _, in := range seed {
		in.ID = ""
		in.PodNumber = nil
		in.Roles = nil
		in.SharedRoles = nil
		students = append(students, r.newStudent(in))
	}

	return models.AppState{
		SchemaVersion: models.CurrentSchemaVersion,
		Students:      students,
		Pods:          map[string]models.Pod{},
		Assessments:   []models.Assessment{},
		TeacherGrades: map[string]models.TeacherGrade{},
		CurrentPeriod: 1,
	}
}

// Reduce returns the snapshot produced by applying a to s. Actions that change
// nothing, including unknown ones, return s itself with the same revision.
func (r *Reducer) Reduce(s models.AppState, a Action) models.AppState {
	d := &draft{base: s, next: s}

	switch a.Type {
	case ActionImportStudents:
		inputs, _ := a.Payload.([]models.StudentInput)
		r.importStudents(d, inputs)
	case ActionAddStudents:
		inputs, _ := a.Payload.([]models.StudentInput)
		r.addStudents(d, inputs)
	case ActionAddStudent:
		if input, ok := a.Payload.(models.StudentInput); ok {
			r.addStudents(d, []models.StudentInput{input})
		}
	case ActionUpdateStudent:
		if p, ok := a.Payload.(UpdateStudentPayload); ok {
			updateStudent(d, p)
		}
	case ActionUpdateStudentHomeroom:
		if p, ok := a.Payload.(HomeroomPayload); ok {
			changeHomeroom(d, p.StudentID, p.Homeroom)
		}
	case ActionDeleteStudent:
		if p, ok := a.Payload.(StudentRef); ok {
			deleteStudent(d, p.StudentID)
		}
	case ActionAssignPod:
		if p, ok := a.Payload.(AssignPodPayload); ok {
			assignPod(d, p)
		}
	case ActionRemoveFromPod:
		if p, ok := a.Payload.(StudentRef); ok {
			if _, idx, found := d.next.FindStudent(p.StudentID); found {
				detachFromPod(d, idx)
			}
		}
	case ActionAssignRoles:
		if p, ok := a.Payload.(AssignRolesPayload); ok {
			assignRoles(d, p)
		}
	case ActionBulkImportPodData:
		rows, _ := a.Payload.([]PodImportRow)
		bulkImportPodData(d, rows)
	case ActionBulkDeletePodAssignments:
		if p, ok := a.Payload.(PeriodPayload); ok {
			bulkDeletePodAssignments(d, p.Period)
		}
	case ActionAddAssessment:
		if input, ok := a.Payload.(models.AssessmentInput); ok {
			r.addAssessment(d, input)
		}
	case ActionUpdatePodStage:
		if p, ok := a.Payload.(PodStagePayload); ok {
			updatePodStage(d, p)
		}
	case ActionAddTeacherGrade:
		if p, ok := a.Payload.(TeacherGradePayload); ok {
			addTeacherGrade(d, p)
		}
	case ActionSetCurrentPeriod:
		if period, ok := a.Payload.(int); ok && period != d.next.CurrentPeriod {
			d.next.CurrentPeriod = period
			d.changed = true
		}
	case ActionSetCurrentPod:
		if key, ok := a.Payload.(*string); ok && !equalStringPtr(key, d.next.CurrentPod) {
			if key != nil {
				k := *key
				key = &k
			}
			d.next.CurrentPod = key
			d.changed = true
		}
	case ActionResetAllData:
		d.next = r.Initial()
		d.changed = true
	case ActionResetAssessments:
		resetAssessments(d)
	}

	if !d.changed {
		return s
	}
	d.next.SchemaVersion = models.CurrentSchemaVersion
	d.next.Revision = s.Revision + 1
	return d.next
}

// draft tracks copy-on-write state for a single reduction.
type draft struct {
	base           models.AppState
	next           models.AppState
	changed        bool
	studentsCopied bool
	podsCopied     bool
}

func (d *draft) students() []models.Student {
	if !d.studentsCopied {
		d.next.Students = slices.Clone(d.next.Students)
		d.studentsCopied = true
	}
	return d.next.Students
}

func (d *draft) setStudent(idx int, student models.Student) {
	d.students()[idx] = student
	d.changed = true
}

func (d *draft) pods() map[string]models.Pod {
	if !d.podsCopied {
		d.next.Pods = maps.Clone(d.next.Pods)
		if d.next.Pods == nil {
			d.next.Pods = map[string]models.Pod{}
		}
		d.podsCopied = true
	}
	return d.next.Pods
}

func (d *draft) setPod(pod models.Pod) {
	d.pods()[pod.ID] = pod
	d.changed = true
}

func (d *draft) deletePod(key string) {
	if _, ok := d.next.Pods[key]; !ok {
		return
	}
	delete(d.pods(), key)
	d.changed = true
}

func (r *Reducer) newStudent(in models.StudentInput) models.Student {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = r.NewID()
	}
	homeroom := strings.TrimSpace(in.Homeroom)
	period, periodName := roster.ResolvePeriod(homeroom)

	var podNumber *int
	if in.PodNumber != nil && period != nil {
		podNumber = models.IntPtr(*in.PodNumber)
	}

	return models.Student{
		ID:          id,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Homeroom:    homeroom,
		Period:      period,
		PeriodName:  periodName,
		PodNumber:   podNumber,
		Roles:       cloneRoles(in.Roles),
		SharedRoles: cloneSharedRoles(in.SharedRoles),
	}
}

func (r *Reducer) importStudents(d *draft, inputs []models.StudentInput) {
	students := make([]models.Student, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[strings.TrimSpace(in.ID)]; dup {
			in.ID = ""
		}
		student := r.newStudent(in)
		seen[student.ID] = struct{}{}
		students = append(students, student)
	}
	d.next.Students = students
	d.studentsCopied = true
	d.changed = true

	// Existing pods keep their stage; their member lists are rebuilt from the
	// imported records so they only reference students that exist.
	pods := d.pods()
	for key, pod := range pods {
		pod.Members = []string{}
		pods[key] = pod
	}
	for _, student := range students {
		if student.InPod() {
			attachToPod(d, student.ID, *student.Period, *student.PodNumber)
		}
	}
}

func (r *Reducer) addStudents(d *draft, inputs []models.StudentInput) {
	if len(inputs) == 0 {
		return
	}
	students := d.students()
	for _, in := range inputs {
		if _, _, exists := d.next.FindStudent(strings.TrimSpace(in.ID)); exists {
			in.ID = ""
		}
		student := r.newStudent(in)
		students = append(students, student)
		d.next.Students = students
		if student.InPod() {
			attachToPod(d, student.ID, *student.Period, *student.PodNumber)
		}
	}
	d.changed = true
}

// updateStudent merges the patch into the student. A new homeroom re-derives
// the period and, like UPDATE_STUDENT_HOMEROOM, drops the pod assignment and
// roles; the rest of the patch is then applied on top of that.
func updateStudent(d *draft, p UpdateStudentPayload) {
	current, idx, ok := d.next.FindStudent(p.ID)
	if !ok {
		return
	}
	patch := p.Updates
	updated := current
	if patch.Homeroom != nil {
		if homeroom := strings.TrimSpace(*patch.Homeroom); homeroom != current.Homeroom {
			updated.Homeroom = homeroom
			updated.Period, updated.PeriodName = roster.ResolvePeriod(homeroom)
			updated.PodNumber = nil
			updated.Roles = []string{}
			updated.SharedRoles = map[string][]string{}
		}
	}
	if patch.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		updated.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.PodNumber != nil && updated.Period != nil {
		updated.PodNumber = models.IntPtr(*patch.PodNumber)
	}
	if patch.Roles != nil {
		updated.Roles = cloneRoles(patch.Roles)
	}
	if patch.SharedRoles != nil {
		updated.SharedRoles = cloneSharedRoles(patch.SharedRoles)
	}
	if sameStudent(current, updated) {
		return
	}

	if from, to := current.PodKey(), updated.PodKey(); from != to {
		if pod, ok := d.next.Pods[from]; ok && from != "" {
			pod.Members = withoutMember(pod.Members, current.ID)
			d.setPod(pod)
		}
		if to != "" {
			attachToPod(d, current.ID, *updated.Period, *updated.PodNumber)
		}
	}
	d.setStudent(idx, updated)
}

func sameStudent(a, b models.Student) bool {
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Homeroom == b.Homeroom &&
		a.PeriodName == b.PeriodName &&
		equalIntPtr(a.Period, b.Period) &&
		equalIntPtr(a.PodNumber, b.PodNumber) &&
		slices.Equal(a.Roles, b.Roles) &&
		maps.EqualFunc(a.SharedRoles, b.SharedRoles, slices.Equal[[]string])
}

func changeHomeroom(d *draft, studentID, homeroom string) {
	current, idx, ok := d.next.FindStudent(studentID)
	if !ok {
		return
	}
	detachFromPod(d, idx)
	student := d.next.Students[idx]
	student.Homeroom = strings.TrimSpace(homeroom)
	student.Period, student.PeriodName = roster.ResolvePeriod(student.Homeroom)
	student.PodNumber = nil
	student.Roles = []string{}
	student.SharedRoles = map[string][]string{}
	if current.Homeroom == student.Homeroom && !current.InPod() && equalIntPtr(current.Period, student.Period) {
		return
	}
	d.setStudent(idx, student)
}

func deleteStudent(d *draft, studentID string) {
	current, idx, ok := d.next.FindStudent(studentID)
	if !ok {
		return
	}
	if current.InPod() {
		detachFromPod(d, idx)
	}
	d.next.Students = slices.Delete(d.students(), idx, idx+1)
	d.changed = true

	// Stray memberships in other pods are dropped too.
	for key, pod := range d.next.Pods {
		if pod.HasMember(studentID) {
			pod.Members = withoutMember(pod.Members, studentID)
			d.pods()[key] = pod
		}
	}
	if _, graded := d.next.TeacherGrades[studentID]; graded {
		grades := maps.Clone(d.next.TeacherGrades)
		delete(grades, studentID)
		d.next.TeacherGrades = grades
	}
}

func assignPod(d *draft, p AssignPodPayload) {
	current, idx, ok := d.next.FindStudent(p.StudentID)
	if !ok {
		return
	}
	student := current
	student.PodNumber = models.IntPtr(p.PodNumber)
	student.Period = models.IntPtr(p.Period)
	d.setStudent(idx, student)
	attachToPod(d, p.StudentID, p.Period, p.PodNumber)
}

// attachToPod creates the pod when needed and appends the member once.
func attachToPod(d *draft, studentID string, period, podNumber int) {
	key := models.PodKey(period, podNumber)
	pod, exists := d.next.Pods[key]
	if !exists {
		pod = models.Pod{
			ID:        key,
			Period:    period,
			PodNumber: podNumber,
			Members:   []string{},
			Stage:     models.PodStageNotStarted,
		}
	}
	if pod.HasMember(studentID) {
		if !exists {
			d.setPod(pod)
		}
		return
	}
	pod.Members = append(slices.Clip(pod.Members), studentID)
	d.setPod(pod)
}

// detachFromPod clears the pod assignment of the student at idx and drops the
// student from the former pod's member list.
func detachFromPod(d *draft, idx int) {
	student := d.next.Students[idx]
	if !student.InPod() {
		return
	}
	if key := student.PodKey(); key != "" {
		if pod, ok := d.next.Pods[key]; ok {
			pod.Members = withoutMember(pod.Members, student.ID)
			d.setPod(pod)
		}
	}
	student.PodNumber = nil
	student.Roles = []string{}
	student.SharedRoles = map[string][]string{}
	d.setStudent(idx, student)
}

func assignRoles(d *draft, p AssignRolesPayload) {
	current, idx, ok := d.next.FindStudent(p.StudentID)
	if !ok {
		return
	}
	current.Roles = cloneRoles(p.Roles)
	current.SharedRoles = cloneSharedRoles(p.SharedRoles)
	d.setStudent(idx, current)
}

func bulkImportPodData(d *draft, rows []PodImportRow) {
	type placement struct {
		idx    int
		podKey string
		shared []string
	}
	placements := make([]placement, 0, len(rows))

	for _, row := range rows {
		if row.PodNumber == nil || *row.PodNumber <= 0 {
			continue
		}
		idx := matchStudent(d.next.Students, row)
		if idx < 0 {
			continue
		}
		student := d.next.Students[idx]
		info, ok := roster.LookupHomeroom(student.Homeroom)
		if !ok {
			continue
		}

		if student.InPod() && student.PodKey() != models.PodKey(info.Period, *row.PodNumber) {
			detachFromPod(d, idx)
			student = d.next.Students[idx]
		}

		student.Period = models.IntPtr(info.Period)
		student.PeriodName = info.Name
		student.PodNumber = models.IntPtr(*row.PodNumber)
		student.Roles = cloneRoles(row.Roles)
		student.SharedRoles = map[string][]string{}
		d.setStudent(idx, student)
		attachToPod(d, student.ID, info.Period, *row.PodNumber)

		placements = append(placements, placement{idx: idx, podKey: student.PodKey(), shared: row.SharedRoles})
	}

	for _, p := range placements {
		if len(p.shared) == 0 {
			continue
		}
		student := d.next.Students[p.idx]
		shared := map[string][]string{}
		for _, role := range p.shared {
			if !student.HasRole(role) {
				continue
			}
			holders := []string{}
			for _, other := range placements {
				peer := d.next.Students[other.idx]
				if other.podKey == p.podKey && peer.ID != student.ID && peer.HasRole(role) {
					holders = append(holders, peer.ID)
				}
			}
			shared[role] = holders
		}
		student.SharedRoles = shared
		d.setStudent(p.idx, student)
	}
}

func matchStudent(students []models.Student, row PodImportRow) int {
	first := strings.TrimSpace(row.FirstName)
	last := strings.TrimSpace(row.LastName)
	homeroom := strings.TrimSpace(row.Homeroom)
	for i, student := range students {
		if strings.EqualFold(student.FirstName, first) &&
			strings.EqualFold(student.LastName, last) &&
			strings.EqualFold(student.Homeroom, homeroom) {
			return i
		}
	}
	return -1
}

func bulkDeletePodAssignments(d *draft, period int) {
	for idx, student := range d.next.Students {
		if student.Period == nil || *student.Period != period {
			continue
		}
		if !student.InPod() && len(student.Roles) == 0 && len(student.SharedRoles) == 0 {
			continue
		}
		student.PodNumber = nil
		student.Roles = []string{}
		student.SharedRoles = map[string][]string{}
		d.setStudent(idx, student)
	}

	prefix := models.PeriodKeyPrefix(period)
	for key := range d.next.Pods {
		if strings.HasPrefix(key, prefix) {
			d.deletePod(key)
		}
	}
}

func (r *Reducer) addAssessment(d *draft, in models.AssessmentInput) {
	assessment := models.Assessment{
		ID:            r.NewID(),
		AssessorID:    in.AssessorID,
		AssesseeID:    in.AssesseeID,
		PodID:         in.PodID,
		RoleScores:    cloneScores(in.RoleScores),
		GeneralScores: cloneScores(in.GeneralScores),
		Comments:      in.Comments,
		Timestamp:     r.Now().UnixMilli(),
		IsSelfEval:    in.IsSelfEval || (in.AssessorID != "" && in.AssessorID == in.AssesseeID),
		AssesseeRoles: slices.Clone(in.AssesseeRoles),
	}
	d.next.Assessments = append(slices.Clip(d.next.Assessments), assessment)
	d.changed = true
}

func updatePodStage(d *draft, p PodStagePayload) {
	key := strings.TrimSpace(p.PodKey)
	if key == "" || !p.Stage.Valid() {
		return
	}
	pod, exists := d.next.Pods[key]
	if exists && pod.Stage == p.Stage {
		return
	}
	if !exists {
		pod = models.Pod{ID: key, Members: []string{}}
		if period, podNumber, ok := models.ParsePodKey(key); ok {
			pod.Period = period
			pod.PodNumber = podNumber
		}
	}
	pod.Stage = p.Stage
	d.setPod(pod)
}

func addTeacherGrade(d *draft, p TeacherGradePayload) {
	if _, _, ok := d.next.FindStudent(p.StudentID); !ok {
		return
	}
	grades := maps.Clone(d.next.TeacherGrades)
	if grades == nil {
		grades = map[string]models.TeacherGrade{}
	}
	grades[p.StudentID] = p.Grades
	d.next.TeacherGrades = grades
	d.changed = true
}

func resetAssessments(d *draft) {
	d.next.Assessments = []models.Assessment{}
	d.next.TeacherGrades = map[string]models.TeacherGrade{}
	for key, pod := range d.next.Pods {
		if pod.Stage != models.PodStageNotStarted {
			pod.Stage = models.PodStageNotStarted
			d.pods()[key] = pod
		}
	}
	d.changed = true
}

func withoutMember(members []string, studentID string) []string {
	out := make([]string, 0, len(members))
	for _, id := range members {
		if id != studentID {
			out = append(out, id)
		}
	}
	return out
}

func cloneRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		if trimmed := strings.TrimSpace(role); trimmed != "" && !slices.Contains(out, trimmed) {
			out = append(out, trimmed)
		}
	}
	return out
}

func cloneSharedRoles(shared map[string][]string) map[string][]string {
	out := make(map[string][]string, len(shared))
	for role, holders := range shared {
		out[role] = slices.Clone(holders)
		if out[role] == nil {
			out[role] = []string{}
		}
	}
	return out
}

func cloneScores(scores map[string]int) map[string]int {
	if scores == nil {
		return map[string]int{}
	}
	return maps.Clone(scores)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
