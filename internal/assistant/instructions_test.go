// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package assistant

import (
	"testing"
)

func TestExtractInstructionRefreshSpellings(t *testing.T) {
	for _, key := range []string{"refresh", "updateData", "refreshDashboard"} {
		instr := ExtractInstruction(map[string]interface{}{key: true})
		if !instr.ShouldRefreshData {
			t.Errorf("%s: true must request a refresh", key)
		}
	}

	instr := ExtractInstruction(map[string]interface{}{"refresh": false})
	if instr.ShouldRefreshData {
		t.Error("refresh: false must not request a refresh")
	}
}

func TestExtractInstructionNavigation(t *testing.T) {
	instr := ExtractInstruction(map[string]interface{}{"navigateTo": "data"})
	if instr.ShouldNavigateTo != "data" {
		t.Errorf("navigateTo = %q", instr.ShouldNavigateTo)
	}
}

func TestExtractInstructionHighlightsAndFilters(t *testing.T) {
	instr := ExtractInstruction(map[string]interface{}{
		"highlightKPIs": []interface{}{"revenue", "orders", 3},
		"filters":       map[string]interface{}{"state": "TX"},
	})

	if len(instr.ShouldHighlightKPIs) != 2 {
		t.Errorf("non-string KPI entries must be skipped, got %v", instr.ShouldHighlightKPIs)
	}
	if instr.ShouldUpdateFilters["state"] != "TX" {
		t.Errorf("filters = %v", instr.ShouldUpdateFilters)
	}
}

func TestExtractInstructionUpdates(t *testing.T) {
	instr := ExtractInstruction(map[string]interface{}{
		"dataUpdates": map[string]interface{}{"totalOrders": float64(5)},
		"uiUpdates":   map[string]interface{}{"theme": "dark"},
	})

	if instr.DataUpdates["totalOrders"] != float64(5) {
		t.Errorf("dataUpdates = %v", instr.DataUpdates)
	}
	if instr.UIUpdates["theme"] != "dark" {
		t.Errorf("uiUpdates = %v", instr.UIUpdates)
	}
	if instr.Empty() {
		t.Error("instruction with updates must not be empty")
	}
}

func TestExtractInstructionActions(t *testing.T) {
	instr := ExtractInstruction(map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{"type": "highlight_kpi", "kpi": "revenue"},
			"not an object",
			map[string]interface{}{"type": "show_notification", "text": "hi"},
		},
	})

	if len(instr.CustomActions) != 2 {
		t.Fatalf("expected 2 actions, got %+v", instr.CustomActions)
	}
	if instr.CustomActions[0].Type != "highlight_kpi" || instr.CustomActions[0].Params["kpi"] != "revenue" {
		t.Errorf("action[0] = %+v", instr.CustomActions[0])
	}
	if _, ok := instr.CustomActions[0].Params["type"]; ok {
		t.Error("type must not leak into params")
	}
}

func TestExtractInstructionNonObject(t *testing.T) {
	for _, data := range []interface{}{"plain", float64(3), nil, []interface{}{"x"}} {
		if instr := ExtractInstruction(data); !instr.Empty() {
			t.Errorf("non-object %v must yield empty instruction, got %+v", data, instr)
		}
	}
}
