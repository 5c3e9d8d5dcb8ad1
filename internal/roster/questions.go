package roster

// Question is a single 1-to-MaxScore rating item.
type Question struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	MaxScore         int    `json:"maxScore"`
	NeedsExplanation bool   `json:"needsExplanation,omitempty"`
}

// Pod roles.
const (
	RoleLeadResearcher   = "Lead Researcher"
	RoleScriptWriter     = "Script Writer"
	RoleDirectorDesigner = "Director / Visual Designer"
	RoleOnCamera         = "On-Camera Ambassador"
)

// Roles lists the pod roles in display order.
var Roles = []string{
	RoleLeadResearcher,
	RoleScriptWriter,
	RoleDirectorDesigner,
	RoleOnCamera,
}

// RoleQuestions are asked about a peer for each role the peer holds.
var RoleQuestions = map[string][]Question{
	RoleLeadResearcher: {
		{ID: "lr1", Text: "How thoroughly did they research the topic?", MaxScore: 5},
		{ID: "lr2", Text: "Did they organize information effectively?", MaxScore: 5},
		{ID: "lr3", Text: "How well did they share research findings with the team?", MaxScore: 5},
		{ID: "lr4", Text: "Did they verify sources and ensure accuracy?", MaxScore: 5},
	},
	RoleScriptWriter: {
		{ID: "sw1", Text: "How clear and well-structured was the script?", MaxScore: 5},
		{ID: "sw2", Text: "Did they incorporate team input effectively?", MaxScore: 5},
		{ID: "sw3", Text: "Was the content engaging and appropriate for the audience?", MaxScore: 5},
		{ID: "sw4", Text: "How well did they meet deadlines for script drafts?", MaxScore: 5},
	},
	RoleDirectorDesigner: {
		{ID: "dv1", Text: "How creative and effective were the visual elements?", MaxScore: 5},
		{ID: "dv2", Text: "Did they guide the team with a clear vision?", MaxScore: 5},
		{ID: "dv3", Text: "How well did they coordinate the production process?", MaxScore: 5},
		{ID: "dv4", Text: "Were the final visuals professional and polished?", MaxScore: 5},
	},
	RoleOnCamera: {
		{ID: "oc1", Text: "How confident and clear was their presentation?", MaxScore: 5},
		{ID: "oc2", Text: "Did they represent the team's work effectively?", MaxScore: 5},
		{ID: "oc3", Text: "How well did they engage with the audience?", MaxScore: 5},
		{ID: "oc4", Text: "Were they well-prepared and professional?", MaxScore: 5},
	},
}

// GeneralQuestions apply to every peer regardless of role.
var GeneralQuestions = []Question{
	{ID: "g1", Text: "How well did this team member collaborate with others?", MaxScore: 5},
	{ID: "g2", Text: "Did they contribute their fair share to the project?", MaxScore: 5},
	{ID: "g3", Text: "How effectively did they communicate with the team?", MaxScore: 5},
}

// PeerEvalQuestions are used in the student-driven peer section of the self evaluation.
var PeerEvalQuestions = []Question{
	{ID: "contribution", Text: "Contribution: Did they do their fair share of the work?", MaxScore: 5},
	{ID: "reliability", Text: "Reliability: Did they complete their assigned role and tasks on time?", MaxScore: 5},
	{ID: "attitude", Text: "Attitude: Were they positive, collaborative, and focused?", MaxScore: 5},
}

// SelfEvalQuestions are answered by a student about their own work.
var SelfEvalQuestions = []Question{
	{ID: "day1", Text: "I actively participated in research and discussion on Day 1.", MaxScore: 5, NeedsExplanation: true},
	{ID: "day2", Text: "I contributed significantly to the script and/or visual design on Day 2.", MaxScore: 5, NeedsExplanation: true},
	{ID: "day3", Text: "I was focused and helpful during the recording and submission process on Day 3.", MaxScore: 5, NeedsExplanation: true},
}

// IsRole reports whether name is a configured pod role.
func IsRole(name string) bool {
	_, ok := RoleQuestions[name]
	return ok
}

// RequiredRoleQuestions counts the role questions that apply to a holder of roles.
func RequiredRoleQuestions(roles []string) int {
	total := 0
	for _, role := range roles {
		total += len(RoleQuestions[role])
	}
	return total
}

// QuestionSets bundles every question list for clients that render forms.
type QuestionSets struct {
	Roles     []string              `json:"roles"`
	RoleSpec  map[string][]Question `json:"role_questions"`
	General   []Question            `json:"general_questions"`
	PeerEval  []Question            `json:"peer_eval_questions"`
	SelfEval  []Question            `json:"self_eval_questions"`
	Homerooms []PeriodInfo          `json:"periods"`
}

// AllQuestions returns the configured question sets.
func AllQuestions() QuestionSets {
	return QuestionSets{
		Roles:     Roles,
		RoleSpec:  RoleQuestions,
		General:   GeneralQuestions,
		PeerEval:  PeerEvalQuestions,
		SelfEval:  SelfEvalQuestions,
		Homerooms: Periods(),
	}
}
