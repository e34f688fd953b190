// Package model はドメインモデルを定義する。
package model

import "time"

// InterviewType は面接の種別を表す。
type InterviewType string

const (
	InterviewTypeTechnical  InterviewType = "technical"
	InterviewTypeBehavioral InterviewType = "behavioral"
	InterviewTypeMixed      InterviewType = "mixed"
)

// IsValid は面接種別が定義済みの値であることを検証する。
func (t InterviewType) IsValid() bool {
	switch t {
	case InterviewTypeTechnical, InterviewTypeBehavioral, InterviewTypeMixed:
		return true
	}
	return false
}

// ExperienceLevel は候補者の経験レベルを表す。
type ExperienceLevel string

const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
)

// IsValid は経験レベルが定義済みの値であることを検証する。
func (l ExperienceLevel) IsValid() bool {
	switch l {
	case LevelEntry, LevelMid, LevelSenior:
		return true
	}
	return false
}

// Interview は生成済みの模擬面接レコードを表す。
// 外部の生成プロセスがユーザーIDに紐付けて作成し、本システムは読み取りのみ行う。
// Finalizedがtrueになった後のQuestionsは不変として扱う（規約による保証）。
type Interview struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Role      string        `json:"role"`
	Type      InterviewType `json:"type"`
	Level     ExperienceLevel `json:"level"`
	Techstack []string      `json:"techstack"`
	Questions []string      `json:"questions"`
	Finalized bool          `json:"finalized"`
	CreatedAt time.Time     `json:"createdAt"`
}

// TranscriptEntry は確定した発話1件を表す。
// トランスクリプトは追記専用で、確定発話のみを保持する。
type TranscriptEntry struct {
	Role      string    `json:"role"`
	Text      string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript は完了した通話のトランスクリプト永続化レコードを表す。
type Transcript struct {
	ID          string            `json:"id"`
	InterviewID string            `json:"interviewId"`
	UserID      string            `json:"userId"`
	Entries     []TranscriptEntry `json:"entries"`
	CreatedAt   time.Time         `json:"createdAt"`
}
