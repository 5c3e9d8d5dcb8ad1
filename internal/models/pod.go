package models

import (
	"fmt"
	"strconv"
	"strings"
)

// PodStage tracks how far a pod has progressed through assessment.
type PodStage string

const (
	PodStageNotStarted PodStage = "not_started"
	PodStageInProgress PodStage = "in_progress"
	PodStageCompleted  PodStage = "completed"
)

// Valid reports whether the stage is one of the known values.
func (s PodStage) Valid() bool {
	switch s {
	case PodStageNotStarted, PodStageInProgress, PodStageCompleted:
		return true
	}
	return false
}

// Pod is a small team of students inside one class period.
type Pod struct {
	ID        string   `json:"id"`
	Period    int      `json:"period"`
	PodNumber int      `json:"podNumber"`
	Members   []string `json:"members"`
	Stage     PodStage `json:"stage"`
}

// HasMember reports whether studentID is listed in the pod.
func (p Pod) HasMember(studentID string) bool {
	for _, id := range p.Members {
		if id == studentID {
			return true
		}
	}
	return false
}

// PodKey builds the composite "{period}_{podNumber}" key.
func PodKey(period, podNumber int) string {
	return fmt.Sprintf("%d_%d", period, podNumber)
}

// PeriodKeyPrefix is the prefix shared by every pod key of a period.
func PeriodKeyPrefix(period int) string {
	return fmt.Sprintf("%d_", period)
}

// ParsePodKey splits a pod key into period and pod number.
func ParsePodKey(key string) (period int, podNumber int, ok bool) {
	left, right, found := strings.Cut(key, "_")
	if !found {
		return 0, 0, false
	}
	period, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, false
	}
	podNumber, err = strconv.Atoi(right)
	if err != nil {
		return 0, 0, false
	}
	return period, podNumber, true
}
