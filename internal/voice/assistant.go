package voice

import (
	"fmt"
	"strings"

	"github.com/hitoshi/prepview/internal/model"
)

// AssistantConfig はインライン通話のアシスタント構成。
// ワイヤ表現はSDKのアシスタント作成スキーマに従う。
type AssistantConfig struct {
	Name         string            `json:"name"`
	FirstMessage string            `json:"firstMessage"`
	Transcriber  TranscriberConfig `json:"transcriber"`
	Voice        VoiceConfig       `json:"voice"`
	Model        ModelConfig       `json:"model"`
}

// TranscriberConfig は文字起こしプロバイダーの構成。
type TranscriberConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Language string `json:"language"`
}

// VoiceConfig は音声合成プロバイダーの構成。
type VoiceConfig struct {
	Provider        string  `json:"provider"`
	VoiceID         string  `json:"voiceId"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarityBoost"`
	Speed           float64 `json:"speed"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"useSpeakerBoost"`
}

// ModelConfig は言語モデルの構成。
type ModelConfig struct {
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Messages []ModelMessage `json:"messages"`
}

// ModelMessage はモデルへ渡す1メッセージ。
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const interviewerFirstMessage = "Hello! Thank you for taking the time to speak with me today. I'm excited to learn more about you and your experience."

const interviewerSystemPrompt = `You are a professional job interviewer conducting a real-time voice interview with a candidate. Your goal is to assess their qualifications, motivation, and fit for the role.

Interview Guidelines:
Follow the structured question flow:
{{questions}}

Engage naturally & react appropriately:
Listen actively to responses and acknowledge them before moving forward.
Ask brief follow-up questions if a response is vague or requires more detail.
Keep the conversation flowing smoothly while maintaining control.
Be professional, yet warm and welcoming:

Use official yet friendly language.
Keep responses concise and to the point (like in a real voice interview).
Avoid robotic phrasing—sound natural and conversational.
Answer the candidate's questions professionally:

If asked about the role, company, or expectations, provide a clear and relevant answer.
If unsure, redirect the candidate to HR for more details.

Conclude the interview properly:
Thank the candidate for their time.
Inform them that the company will reach out soon with feedback.
End the conversation on a polite and positive note.

- Be sure to be professional and polite.
- Keep all your responses short and simple. Use official language, but be kind and welcoming.
- This is a voice conversation, so keep your responses short, like in a real conversation. Don't ramble for too long.`

// NewInterviewerAssistant は面接記録からインライン通話用のアシスタント構成を
// 合成する。職種・種別・レベル・技術スタックと質問リストをシステム指示へ
// 埋め込み、文字起こし・音声・モデルの各ブロックは固定値を用いる。
func NewInterviewerAssistant(interview *model.Interview) AssistantConfig {
	var questions strings.Builder
	for _, q := range interview.Questions {
		fmt.Fprintf(&questions, "- %s\n", q)
	}

	prompt := fmt.Sprintf(
		"The candidate is interviewing for a %s position at the %s level. This is a %s interview covering: %s.\n\n%s",
		interview.Role,
		interview.Level,
		interview.Type,
		strings.Join(interview.Techstack, ", "),
		strings.Replace(interviewerSystemPrompt, "{{questions}}", strings.TrimRight(questions.String(), "\n"), 1),
	)

	return AssistantConfig{
		Name:         "Interviewer",
		FirstMessage: interviewerFirstMessage,
		Transcriber: TranscriberConfig{
			Provider: "deepgram",
			Model:    "nova-2",
			Language: "en",
		},
		Voice: VoiceConfig{
			Provider:        "11labs",
			VoiceID:         "sarah",
			Stability:       0.4,
			SimilarityBoost: 0.8,
			Speed:           0.9,
			Style:           0.5,
			UseSpeakerBoost: true,
		},
		Model: ModelConfig{
			Provider: "openai",
			Model:    "gpt-4",
			Messages: []ModelMessage{
				{Role: "system", Content: prompt},
			},
		},
	}
}
