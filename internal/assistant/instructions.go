// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package assistant

import (
	"github.com/datapulse/datapulse/internal/models"
)

// ExtractInstruction pulls the structured dashboard-update directives out of
// a decoded webhook reply. Absent or malformed fields simply stay at their
// zero value; a reply is never rejected for carrying unknown keys.
func ExtractInstruction(data interface{}) models.UpdateInstruction {
	var instr models.UpdateInstruction

	obj, ok := data.(map[string]interface{})
	if !ok {
		return instr
	}

	// Any of the three refresh spellings triggers a refetch.
	if truthy(obj["refresh"]) || truthy(obj["updateData"]) || truthy(obj["refreshDashboard"]) {
		instr.ShouldRefreshData = true
	}

	if kpis, ok := obj["highlightKPIs"].([]interface{}); ok {
		for _, k := range kpis {
			if s, ok := k.(string); ok && s != "" {
				instr.ShouldHighlightKPIs = append(instr.ShouldHighlightKPIs, s)
			}
		}
	}

	if filters, ok := obj["filters"].(map[string]interface{}); ok && len(filters) > 0 {
		instr.ShouldUpdateFilters = filters
	}

	if target, ok := obj["navigateTo"].(string); ok && target != "" {
		instr.ShouldNavigateTo = target
	}

	if updates, ok := obj["dataUpdates"].(map[string]interface{}); ok && len(updates) > 0 {
		instr.DataUpdates = updates
	}

	if updates, ok := obj["uiUpdates"].(map[string]interface{}); ok && len(updates) > 0 {
		instr.UIUpdates = updates
	}

	if actions, ok := obj["actions"].([]interface{}); ok {
		for _, a := range actions {
			action, ok := a.(map[string]interface{})
			if !ok {
				continue
			}
			typ, _ := action["type"].(string)
			params := make(map[string]interface{}, len(action))
			for k, v := range action {
				if k != "type" {
					params[k] = v
				}
			}
			instr.CustomActions = append(instr.CustomActions, models.CustomAction{
				Type:   typ,
				Params: params,
			})
		}
	}

	return instr
}

// truthy mirrors loose boolean coercion for reply fields that flows send as
// true, "true", 1 or a non-empty string.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case float64:
		return t != 0
	}
	return false
}
