// Package call は音声通話セッションの状態機械を提供する。
// 通話ライフサイクル状態の遷移、トランスクリプトの蓄積、発話インジケーター、
// セットアップフローでの面接ID捕捉を単一のコントローラーで管理する。
package call

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/prepview/internal/model"
	"github.com/hitoshi/prepview/internal/voice"
)

// State は通話セッションの状態を表す。
// idleは初期状態。終端状態はなく、disconnected/errorからは再試行で
// connectingへ戻れる。
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateError        State = "error"
)

// 通話開始/停止の失敗時にユーザーへ提示する定型メッセージ。
// エラーメッセージの部分一致で3種に分類する。
const (
	MsgWorkflowNotConfigured = "Workflow ID not configured"
	MsgDataUnavailable       = "Interview data unavailable"
	MsgConnectionFailed      = "Failed to connect. Please check your network and try again."
)

// ErrDataUnavailable は面接モードで面接レコードが未取得であることを表す。
// この場合はSDKへ接続せずに失敗する。
var ErrDataUnavailable = errors.New("call: interview data unavailable")

const (
	defaultSpeakingThreshold = 0.1
	persistTimeout           = 10 * time.Second
)

// SDK は音声SDKクライアントに要求する操作。
type SDK interface {
	Start(ctx context.Context, req voice.StartRequest) error
	Stop(ctx context.Context) error
	Events() <-chan voice.Event
	Close() error
}

var _ SDK = (*voice.Client)(nil)

// TranscriptSink は通話終了時のトランスクリプト永続化先。
type TranscriptSink interface {
	Create(ctx context.Context, transcript *model.Transcript) error
}

// Config はコントローラーの構成。
// SetupModeがtrueのときはWorkflowIDのリモートワークフローを起動し、
// falseのときはInterviewのレコードからアシスタント構成を合成する。
type Config struct {
	SetupMode   bool
	WorkflowID  string
	UserID      string
	InterviewID string
	Interview   *model.Interview

	// SpeakingThreshold を超える音量で「ユーザー発話中」とみなす。
	SpeakingThreshold float64
}

// Snapshot はコントローラー状態の読み取り専用コピー。
type Snapshot struct {
	State               State
	CallID              string
	Transcript          []model.TranscriptEntry
	PartialRole         string
	PartialText         string
	AgentSpeaking       bool
	UserSpeaking        bool
	SetupComplete       bool
	CapturedInterviewID string
	ErrorMessage        string
}

// streamHandle は1回の通話試行のイベントストリーム。
type streamHandle struct {
	attempt int
	events  <-chan voice.Event
}

// Controller は通話セッションの状態機械。
// イベント消費はコントローラーと共に起動する単一のゴルーチンで行い、
// 状態の変更はすべてミューテックス下で行う。試行ごとに番号を振り、
// 追い越された試行のイベントは破棄する。
type Controller struct {
	config Config
	sdk    SDK
	sink   TranscriptSink
	logger *slog.Logger

	// actionMu はToggleを直列化する。接続確立中の停止要求が
	// 進行中のStartを追い越さないことを保証する。
	actionMu sync.Mutex

	mu                  sync.Mutex
	state               State
	attempt             int
	callID              string
	transcript          []model.TranscriptEntry
	partialRole         string
	partialText         string
	agentSpeaking       bool
	userSpeaking        bool
	setupComplete       bool
	capturedInterviewID string
	errorMessage        string

	streams   chan streamHandle
	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewController はコントローラーを作成しイベント消費ゴルーチンを起動する。
// sinkはnilを許容し、その場合トランスクリプトは永続化されない。
func NewController(config Config, sdk SDK, sink TranscriptSink, logger *slog.Logger) *Controller {
	if config.SpeakingThreshold <= 0 {
		config.SpeakingThreshold = defaultSpeakingThreshold
	}
	c := &Controller{
		config:  config,
		sdk:     sdk,
		sink:    sink,
		logger:  logger,
		state:   StateIdle,
		streams: make(chan streamHandle, 1),
		closed:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

// Toggle は主ボタンに対応する単一のユーザーアクション。
// idle/disconnected/errorからは通話を開始し、connectedからは停止を要求する。
// connecting中は何もしない。
func (c *Controller) Toggle(ctx context.Context) error {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case StateIdle, StateDisconnected, StateError:
		return c.startCall(ctx)
	case StateConnected:
		return c.stopCall(ctx)
	default:
		// connecting中のアクションは無視する
		return nil
	}
}

// startCall はconnectingへ遷移し、SDKへの開始要求をちょうど1回発行する。
func (c *Controller) startCall(ctx context.Context) error {
	c.mu.Lock()
	c.attempt++
	attempt := c.attempt
	c.state = StateConnecting
	c.errorMessage = ""
	c.callID = ""
	c.mu.Unlock()

	req, err := c.buildStartRequest()
	if err != nil {
		c.failAttempt(attempt, err)
		return err
	}

	// 前の試行の接続が残っていれば破棄してからつなぎ直す
	if err := c.sdk.Close(); err != nil {
		c.logger.Warn("前回接続の破棄に失敗しました", slog.String("error", err.Error()))
	}

	if err := c.sdk.Start(ctx, req); err != nil {
		c.failAttempt(attempt, err)
		return err
	}

	c.streams <- streamHandle{attempt: attempt, events: c.sdk.Events()}
	return nil
}

// stopCall は停止要求をSDKへ送る。disconnectedへの遷移は同期的には行わず、
// 後続のcall-endイベントで行う。
func (c *Controller) stopCall(ctx context.Context) error {
	if err := c.sdk.Stop(ctx); err != nil {
		c.mu.Lock()
		c.state = StateError
		c.errorMessage = classifyCallError(err)
		c.mu.Unlock()
		return err
	}
	return nil
}

// buildStartRequest はモードに応じた開始要求を合成する。
// 面接モードでレコードが未取得の場合はSDKに触れずに失敗する。
func (c *Controller) buildStartRequest() (voice.StartRequest, error) {
	if c.config.SetupMode {
		if c.config.WorkflowID == "" {
			return nil, errors.New("call: workflow ID not configured")
		}
		return voice.WorkflowStart{
			WorkflowID: c.config.WorkflowID,
			VariableValues: map[string]string{
				"userid":      c.config.UserID,
				"interviewId": c.config.InterviewID,
			},
		}, nil
	}

	if c.config.Interview == nil {
		return nil, ErrDataUnavailable
	}
	return voice.AssistantStart{
		Assistant: voice.NewInterviewerAssistant(c.config.Interview),
	}, nil
}

// failAttempt は開始失敗をerror状態へ反映する。追い越された試行は無視する。
func (c *Controller) failAttempt(attempt int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt != c.attempt {
		return
	}
	c.state = StateError
	c.errorMessage = classifyCallError(err)
	c.logger.Warn("通話の開始に失敗しました",
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()))
}

// run はイベント消費ループ。ストリームを1本ずつ順に消費する。
func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.closed:
			return
		case handle := <-c.streams:
			c.consumeStream(handle)
		}
	}
}

func (c *Controller) consumeStream(handle streamHandle) {
	for {
		select {
		case <-c.closed:
			return
		case event, ok := <-handle.events:
			if !ok {
				return
			}
			c.handleEvent(handle.attempt, event)
		}
	}
}

// handleEvent はSDKイベントを1件処理する。
// 追い越された試行のイベントは試行番号の比較で破棄する。
func (c *Controller) handleEvent(attempt int, event voice.Event) {
	c.mu.Lock()

	if attempt != c.attempt {
		c.mu.Unlock()
		return
	}

	switch e := event.(type) {
	case voice.CallStartedEvent:
		if c.state == StateConnecting {
			c.state = StateConnected
			c.callID = e.CallID
		}
		c.mu.Unlock()

	case voice.CallEndedEvent:
		var pending *model.Transcript
		if c.state == StateConnected {
			c.state = StateDisconnected
			c.agentSpeaking = false
			c.userSpeaking = false
			if c.config.SetupMode {
				c.setupComplete = true
			}
			pending = c.pendingTranscriptLocked()
		}
		c.mu.Unlock()
		if pending != nil {
			c.persistTranscript(pending)
		}

	case voice.ErrorEvent:
		c.state = StateError
		c.errorMessage = classifyCallError(errors.New(e.Message))
		c.agentSpeaking = false
		c.userSpeaking = false
		c.mu.Unlock()

	case voice.SpeechStartedEvent:
		c.agentSpeaking = true
		c.mu.Unlock()

	case voice.SpeechEndedEvent:
		c.agentSpeaking = false
		c.mu.Unlock()

	case voice.VolumeEvent:
		if c.state == StateConnected {
			c.userSpeaking = e.Level > c.config.SpeakingThreshold
		}
		c.mu.Unlock()

	case voice.TranscriptEvent:
		if e.Final {
			c.transcript = append(c.transcript, model.TranscriptEntry{
				Role:      e.Role,
				Text:      e.Text,
				Timestamp: time.Now(),
			})
			c.partialRole = ""
			c.partialText = ""
		} else {
			c.partialRole = e.Role
			c.partialText = e.Text
		}
		c.mu.Unlock()

	case voice.FunctionResultEvent:
		if c.config.SetupMode {
			if id, ok := e.Payload["interviewId"].(string); ok && id != "" {
				c.capturedInterviewID = id
			}
		}
		c.mu.Unlock()

	default:
		c.mu.Unlock()
	}
}

// pendingTranscriptLocked は永続化対象のトランスクリプトを組み立てる。
// 呼び出し元がロックを保持していること。
func (c *Controller) pendingTranscriptLocked() *model.Transcript {
	if c.sink == nil || len(c.transcript) == 0 {
		return nil
	}

	interviewID := c.config.InterviewID
	if c.config.SetupMode && c.capturedInterviewID != "" {
		interviewID = c.capturedInterviewID
	} else if !c.config.SetupMode && c.config.Interview != nil {
		interviewID = c.config.Interview.ID
	}

	entries := make([]model.TranscriptEntry, len(c.transcript))
	copy(entries, c.transcript)

	return &model.Transcript{
		ID:          uuid.NewString(),
		InterviewID: interviewID,
		UserID:      c.config.UserID,
		Entries:     entries,
		CreatedAt:   time.Now(),
	}
}

func (c *Controller) persistTranscript(transcript *model.Transcript) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := c.sink.Create(ctx, transcript); err != nil {
		c.logger.Error("トランスクリプトの保存に失敗しました",
			slog.String("interview_id", transcript.InterviewID),
			slog.String("error", err.Error()))
		return
	}
	c.logger.Info("トランスクリプトを保存しました",
		slog.String("interview_id", transcript.InterviewID),
		slog.Int("entries", len(transcript.Entries)))
}

// Snapshot は現在の状態のコピーを返す。
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	transcript := make([]model.TranscriptEntry, len(c.transcript))
	copy(transcript, c.transcript)

	return Snapshot{
		State:               c.state,
		CallID:              c.callID,
		Transcript:          transcript,
		PartialRole:         c.partialRole,
		PartialText:         c.partialText,
		AgentSpeaking:       c.agentSpeaking,
		UserSpeaking:        c.userSpeaking,
		SetupComplete:       c.setupComplete,
		CapturedInterviewID: c.capturedInterviewID,
		ErrorMessage:        c.errorMessage,
	}
}

// CanStartInterview はセットアップ完了後に「面接を開始」導線を出せるかを返す。
// セットアップが完了し、かつ関数呼び出し結果から面接IDを捕捉できた場合に限る。
func (c *Controller) CanStartInterview() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setupComplete && c.capturedInterviewID != ""
}

// Close はイベント消費ゴルーチンを解放しSDK接続を破棄する。
// 複数回呼んでも安全で、解放は1回だけ行われる。
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.sdk.Close()
	})
	<-c.done
	return nil
}

// classifyCallError は通話ランタイムエラーを3種の定型メッセージへ分類する。
func classifyCallError(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "workflow"):
		return MsgWorkflowNotConfigured
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "interview data"):
		return MsgDataUnavailable
	default:
		return MsgConnectionFailed
	}
}
