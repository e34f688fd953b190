// Package voice は会話型音声SDKとの境界を提供する。
// WebSocket接続の確立、開始/停止フレームの送信、イベントストリームの
// 復号を担い、上位のコールセッション制御には型付きイベントのみを渡す。
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultDialTimeout = 15 * time.Second
	eventBufferSize    = 256
)

// ErrNotConnected は未接続状態での停止要求を表す。
var ErrNotConnected = errors.New("voice: not connected")

// StartRequest は通話開始要求の閉じたバリアント集合。
// WorkflowStart と AssistantStart のいずれかのみが許される。
type StartRequest interface {
	startRequest()
}

// WorkflowStart はリモートワークフローの起動要求。変数束縛には
// 少なくとも userid と interviewId を含める。
type WorkflowStart struct {
	WorkflowID     string
	VariableValues map[string]string
}

func (WorkflowStart) startRequest() {}

// AssistantStart はインラインのアシスタント構成による直接通話の開始要求。
type AssistantStart struct {
	Assistant AssistantConfig
}

func (AssistantStart) startRequest() {}

// startFrame は開始要求のワイヤ表現。
type startFrame struct {
	Type           string            `json:"type"`
	WorkflowID     string            `json:"workflowId,omitempty"`
	VariableValues map[string]string `json:"variableValues,omitempty"`
	Assistant      *AssistantConfig  `json:"assistant,omitempty"`
}

// stopFrame は停止要求のワイヤ表現。
type stopFrame struct {
	Type string `json:"type"`
}

// ClientConfig はSDKクライアントの構成。
type ClientConfig struct {
	URL         string
	APIKey      string
	DialTimeout time.Duration
}

// Client は音声SDKのWebSocketクライアント。
// 1つのClientは同時に最大1つの通話を保持する。通話ごとに接続を張り、
// 通話終了または停止で接続を破棄する。
type Client struct {
	config ClientConfig
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	events chan Event
	done   chan struct{}
	quit   chan struct{}
}

// NewClient はSDKクライアントを作成する。
func NewClient(config ClientConfig, logger *slog.Logger) *Client {
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaultDialTimeout
	}
	return &Client{
		config: config,
		logger: logger,
	}
}

// Start は接続を確立し開始フレームを送信する。成功すると受信ループが
// 起動し、以降のイベントは Events() のチャネルへ流れる。
// 既に通話中の場合はエラーを返す。
func (c *Client) Start(ctx context.Context, req StartRequest) error {
	frame, err := buildStartFrame(req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return errors.New("voice: call already in progress")
	}

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.config.DialTimeout)
		defer cancel()
	}

	headers := make(http.Header)
	if c.config.APIKey != "" {
		headers.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, c.config.URL, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("音声SDKへの接続に失敗しました (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("音声SDKへの接続に失敗しました: %w", err)
	}

	if err := conn.WriteJSON(frame); err != nil {
		_ = conn.Close()
		return fmt.Errorf("開始フレームの送信に失敗しました: %w", err)
	}

	c.conn = conn
	c.events = make(chan Event, eventBufferSize)
	c.done = make(chan struct{})
	c.quit = make(chan struct{})
	go c.readLoop(conn, c.events, c.done, c.quit)

	c.logger.Info("音声通話を開始しました", slog.String("mode", frame.modeLabel()))
	return nil
}

// Stop は停止フレームを送信する。状態遷移は同期的には起きず、
// サーバー側が通話を閉じた時点で CallEndedEvent が届く。
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if err := conn.WriteJSON(stopFrame{Type: "stop"}); err != nil {
		return fmt.Errorf("停止フレームの送信に失敗しました: %w", err)
	}
	return nil
}

// Events は現在の通話のイベントチャネルを返す。
// 通話終了時にチャネルは閉じられる。未接続時は nil を返す。
func (c *Client) Events() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

// Close は接続を強制的に破棄する。受信ループの終了を待ってから返る。
// 消費側が先に停止していても受信ループは quit で抜けるため、Close が
// 滞留イベントに引きずられて待ち続けることはない。
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	quit := c.quit
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	close(quit)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(2*time.Second))
	_ = conn.Close()
	<-done
	return nil
}

// readLoop は受信フレームを復号しイベントチャネルへ流す。
// 接続が閉じるとチャネルを閉じ、クライアントを未接続状態へ戻す。
// バッファ満杯時の送信は quit の閉鎖で中断できる。
func (c *Client) readLoop(conn *websocket.Conn, events chan Event, done, quit chan struct{}) {
	defer func() {
		close(events)
		close(done)
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			c.logger.Warn("イベントストリームが異常終了しました", slog.String("error", err.Error()))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		event, err := decodeEvent(data)
		if err != nil {
			// 未知のフレームはスキップし、ストリームは継続する
			c.logger.Warn("イベントの復号に失敗しました", slog.String("error", err.Error()))
			continue
		}
		select {
		case events <- event:
		case <-quit:
			return
		}
	}
}

// buildStartFrame は開始要求をワイヤ表現へ変換する。
func buildStartFrame(req StartRequest) (startFrame, error) {
	switch r := req.(type) {
	case WorkflowStart:
		if r.WorkflowID == "" {
			return startFrame{}, errors.New("voice: workflow ID not configured")
		}
		return startFrame{
			Type:           "start",
			WorkflowID:     r.WorkflowID,
			VariableValues: r.VariableValues,
		}, nil
	case AssistantStart:
		assistant := r.Assistant
		return startFrame{
			Type:      "start",
			Assistant: &assistant,
		}, nil
	default:
		return startFrame{}, fmt.Errorf("voice: unsupported start request type %T", req)
	}
}

func (f startFrame) modeLabel() string {
	if f.WorkflowID != "" {
		return "workflow"
	}
	return "assistant"
}
