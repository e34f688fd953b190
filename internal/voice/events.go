package voice

import (
	"encoding/json"
	"fmt"
)

// Event は音声SDKのイベントストリームから復号された1フレームを表す。
// ワイヤ上のJSONはバウンダリで一度だけ復号され、以降は閉じたバリアント集合
// として扱う。呼び出し側での場当たり的な型検査は行わない。
type Event interface {
	eventType() string
}

// CallStartedEvent は通話確立を通知する。CallID はSDKが採番した通話識別子。
type CallStartedEvent struct {
	CallID string
}

func (CallStartedEvent) eventType() string { return "call-start" }

// CallEndedEvent は通話終了を通知する。
type CallEndedEvent struct{}

func (CallEndedEvent) eventType() string { return "call-end" }

// ErrorEvent はSDK側で発生したエラーを通知する。
type ErrorEvent struct {
	Message string
}

func (ErrorEvent) eventType() string { return "error" }

// SpeechStartedEvent はエージェント側の発話開始を通知する。
type SpeechStartedEvent struct{}

func (SpeechStartedEvent) eventType() string { return "speech-start" }

// SpeechEndedEvent はエージェント側の発話終了を通知する。
type SpeechEndedEvent struct{}

func (SpeechEndedEvent) eventType() string { return "speech-end" }

// TranscriptEvent は文字起こし断片を通知する。Final が false の間は
// 同一発話の途中経過であり、表示用の部分テキストとして扱う。
type TranscriptEvent struct {
	Role  string
	Text  string
	Final bool
}

func (TranscriptEvent) eventType() string { return "transcript" }

// FunctionResultEvent はリモートワークフロー内の関数呼び出し結果を通知する。
// ペイロードの形はワークフロー定義に依存するため map のまま保持する。
type FunctionResultEvent struct {
	Payload map[string]any
}

func (FunctionResultEvent) eventType() string { return "function-result" }

// VolumeEvent は入力音量の連続値を通知する。
type VolumeEvent struct {
	Level float64
}

func (VolumeEvent) eventType() string { return "volume-level" }

// wireFrame はSDKから届く生のJSONフレーム。type で判別し、
// 対応するフィールドだけを読む。
type wireFrame struct {
	Type           string          `json:"type"`
	CallID         string          `json:"callId"`
	Message        string          `json:"message"`
	Role           string          `json:"role"`
	Transcript     string          `json:"transcript"`
	TranscriptType string          `json:"transcriptType"`
	Payload        map[string]any  `json:"payload"`
	Level          float64         `json:"level"`
	Raw            json.RawMessage `json:"-"`
}

// decodeEvent はワイヤフレームを1つ復号してイベントに変換する。
// 未知の type は呼び出し側でスキップできるようエラーで区別する。
func decodeEvent(data []byte) (Event, error) {
	var frame wireFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("イベントフレームの復号に失敗しました: %w", err)
	}

	switch frame.Type {
	case "call-start":
		return CallStartedEvent{CallID: frame.CallID}, nil
	case "call-end":
		return CallEndedEvent{}, nil
	case "error":
		return ErrorEvent{Message: frame.Message}, nil
	case "speech-start":
		return SpeechStartedEvent{}, nil
	case "speech-end":
		return SpeechEndedEvent{}, nil
	case "transcript":
		return TranscriptEvent{
			Role:  frame.Role,
			Text:  frame.Transcript,
			Final: frame.TranscriptType == "final",
		}, nil
	case "function-result":
		return FunctionResultEvent{Payload: frame.Payload}, nil
	case "volume-level":
		return VolumeEvent{Level: frame.Level}, nil
	default:
		return nil, fmt.Errorf("未知のイベント種別です: %q", frame.Type)
	}
}
