// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package dispatch turns assistant replies into dashboard effects.
//
// One chat turn flows: webhook (when configured) -> reply normalization ->
// instruction extraction -> effect application. Effects are fail-safe:
// a malformed or unknown effect is logged and skipped, never allowed to
// fail the turn. Turns are serialized so two concurrent chat requests
// cannot interleave their effects.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/datapulse/datapulse/internal/assistant"
	"github.com/datapulse/datapulse/internal/logging"
	"github.com/datapulse/datapulse/internal/metrics"
	"github.com/datapulse/datapulse/internal/models"
	"github.com/datapulse/datapulse/internal/refresh"
)

// Reply sources, reported with every chat result.
const (
	SourceWebhook = "webhook"
	SourceLocal   = "local"
)

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Reply       string                   `json:"reply"`
	Source      string                   `json:"source"`
	Instruction models.UpdateInstruction `json:"instruction"`
	UIState     UIState                  `json:"uiState"`
}

// Dispatcher runs chat turns against the webhook (or the local command
// handler) and applies the resulting effects to the snapshot and UI state.
type Dispatcher struct {
	sender assistant.Sender
	// configured mirrors Client.Configured; kept separate so tests can
	// inject a bare Sender.
	configured bool

	ctrl  *refresh.Controller
	state *StateStore

	// turnMu serializes chat turns end to end.
	turnMu sync.Mutex
}

// NewDispatcher wires the chat pipeline. A nil sender (or unconfigured
// client) routes every turn to the local command handler.
func NewDispatcher(sender assistant.Sender, configured bool, ctrl *refresh.Controller, state *StateStore) *Dispatcher {
	return &Dispatcher{sender: sender, configured: configured, ctrl: ctrl, state: state}
}

// State exposes the UI state store for the API layer.
func (d *Dispatcher) State() *StateStore {
	return d.state
}

// Chat runs one turn. The webhook path degrades to local command handling
// on transport failure; Chat itself only fails on an empty message.
func (d *Dispatcher) Chat(ctx context.Context, message string) (*ChatResult, error) {
	if message == "" {
		return nil, fmt.Errorf("empty chat message")
	}

	d.turnMu.Lock()
	defer d.turnMu.Unlock()

	if d.configured && d.sender != nil {
		if res, err := d.webhookTurn(ctx, message); err == nil {
			return res, nil
		} else {
			logging.Warn().Err(err).Msg("webhook turn failed, answering locally")
		}
	}
	return d.localTurn(ctx, message), nil
}

// webhookTurn sends the message to the automation flow and applies its
// instructions.
func (d *Dispatcher) webhookTurn(ctx context.Context, message string) (*ChatResult, error) {
	snap, _ := d.ctrl.Current()
	status := d.ctrl.Status()
	dctx := assistant.BuildContext(snap, d.state.ActiveView(), status.LastUpdated)

	res, err := d.sender.Send(ctx, message, dctx)
	if err != nil {
		return nil, err
	}

	reply, err := assistant.Normalize(res.Data)
	if err != nil {
		logging.Warn().Str("raw", res.Raw).Msg("assistant reply not recognized")
		metrics.AssistantRequests.WithLabelValues("unrecognized").Inc()
		reply = assistant.FallbackUnrecognized
	}

	instr := assistant.ExtractInstruction(res.Data)
	d.apply(ctx, instr)

	return &ChatResult{
		Reply:       reply,
		Source:      SourceWebhook,
		Instruction: instr,
		UIState:     d.state.Snapshot(),
	}, nil
}

// localTurn answers from the built-in command handler and applies its
// single action.
func (d *Dispatcher) localTurn(ctx context.Context, message string) *ChatResult {
	snap, _ := d.ctrl.Current()
	cmd := assistant.HandleLocalCommand(message, snap)

	var instr models.UpdateInstruction
	switch cmd.Action {
	case "refresh":
		instr.ShouldRefreshData = true
	case "navigate":
		instr.ShouldNavigateTo = cmd.Target
	case "highlight":
		if cmd.Target != "" {
			instr.ShouldHighlightKPIs = []string{cmd.Target}
		}
	}
	d.apply(ctx, instr)

	return &ChatResult{
		Reply:       cmd.Response,
		Source:      SourceLocal,
		Instruction: instr,
		UIState:     d.state.Snapshot(),
	}
}

// apply executes every effect the instruction requests. Order matters:
// data effects first, then navigation and UI effects, so a refreshed
// snapshot is what any highlight or notification refers to.
func (d *Dispatcher) apply(ctx context.Context, instr models.UpdateInstruction) {
	if instr.Empty() {
		return
	}

	if instr.ShouldRefreshData {
		metrics.DispatchedEffects.WithLabelValues("refresh").Inc()
		d.ctrl.Get(ctx, true)
	}

	if len(instr.DataUpdates) > 0 {
		metrics.DispatchedEffects.WithLabelValues("data_update").Inc()
		if _, err := d.ctrl.ApplyPatch(instr.DataUpdates); err != nil {
			logging.Warn().Err(err).Msg("data update skipped")
		}
	}

	if instr.ShouldNavigateTo != "" {
		metrics.DispatchedEffects.WithLabelValues("navigate").Inc()
		if !models.KnownView(instr.ShouldNavigateTo) {
			logging.Debug().Str("view", instr.ShouldNavigateTo).Msg("navigating to unknown view")
		}
		d.state.SetActiveView(instr.ShouldNavigateTo)
	}

	if len(instr.ShouldHighlightKPIs) > 0 {
		metrics.DispatchedEffects.WithLabelValues("highlight").Inc()
		d.state.SetHighlights(instr.ShouldHighlightKPIs)
	}

	if len(instr.ShouldUpdateFilters) > 0 {
		metrics.DispatchedEffects.WithLabelValues("filters").Inc()
		d.state.MergeFilters(instr.ShouldUpdateFilters)
	}

	if len(instr.UIUpdates) > 0 {
		metrics.DispatchedEffects.WithLabelValues("ui_update").Inc()
		d.state.MergeExtra(instr.UIUpdates)
	}

	for _, action := range instr.CustomActions {
		d.applyAction(action)
	}
}

// applyAction executes one custom action. Unknown types are logged and
// skipped.
func (d *Dispatcher) applyAction(action models.CustomAction) {
	switch action.Type {
	case "highlight_kpi":
		kpi, _ := action.Params["kpi"].(string)
		if kpi == "" {
			kpi, _ = action.Params["target"].(string)
		}
		if kpi != "" {
			metrics.DispatchedEffects.WithLabelValues("highlight").Inc()
			d.state.AddHighlight(kpi)
		}
	case "show_notification":
		text, _ := action.Params["text"].(string)
		if text == "" {
			text, _ = action.Params["message"].(string)
		}
		if text != "" {
			level, _ := action.Params["level"].(string)
			metrics.DispatchedEffects.WithLabelValues("notification").Inc()
			d.state.Notify(text, level)
		}
	case "update_filters":
		if filters, ok := action.Params["filters"].(map[string]interface{}); ok && len(filters) > 0 {
			metrics.DispatchedEffects.WithLabelValues("filters").Inc()
			d.state.MergeFilters(filters)
		}
	default:
		metrics.DispatchedEffects.WithLabelValues("skipped").Inc()
		logging.Debug().Str("type", action.Type).Msg("unknown custom action skipped")
	}
}
