package call

import (
	"log/slog"

	"github.com/hitoshi/prepview/internal/model"
	"github.com/hitoshi/prepview/internal/voice"
)

// HostConfig は通話セッションホストの構成。
// Voice は通話ごとに生成されるSDKクライアントの接続先と資格情報、
// WorkflowID はセットアップ通話で起動するリモートワークフローを指す。
type HostConfig struct {
	Voice             voice.ClientConfig
	WorkflowID        string
	SpeakingThreshold float64
}

// Host はアプリケーション設定から通話セッションを構築するファクトリ。
// コントローラーは通話セッションごとに使い捨てで、SDKクライアントも
// セッションごとに新規作成する。
type Host struct {
	config HostConfig
	sink   TranscriptSink
	logger *slog.Logger
}

// NewHost はHostを生成する。sinkはnilを許容する。
func NewHost(config HostConfig, sink TranscriptSink, logger *slog.Logger) *Host {
	return &Host{
		config: config,
		sink:   sink,
		logger: logger,
	}
}

// SetupWorkflowConfigured はセットアップ通話用ワークフローが
// 構成済みかどうかを返す。未構成の環境ではフロントエンドが
// セットアップ導線を出さないための判定に使う。
func (h *Host) SetupWorkflowConfigured() bool {
	return h.config.WorkflowID != ""
}

// NewSetupSession はセットアップ通話のコントローラーを作る。
func (h *Host) NewSetupSession(userID string) *Controller {
	sdk := voice.NewClient(h.config.Voice, h.logger)
	return NewController(Config{
		SetupMode:         true,
		WorkflowID:        h.config.WorkflowID,
		UserID:            userID,
		SpeakingThreshold: h.config.SpeakingThreshold,
	}, sdk, h.sink, h.logger)
}

// NewInterviewSession は面接通話のコントローラーを作る。
func (h *Host) NewInterviewSession(userID string, record *model.Interview) *Controller {
	sdk := voice.NewClient(h.config.Voice, h.logger)
	return NewController(Config{
		UserID:            userID,
		InterviewID:       record.ID,
		Interview:         record,
		SpeakingThreshold: h.config.SpeakingThreshold,
	}, sdk, h.sink, h.logger)
}
