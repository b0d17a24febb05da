// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

package assistant

import (
	"fmt"
	"strings"

	"github.com/datapulse/datapulse/internal/models"
)

// CommandReply is the answer produced by the built-in command handler.
// Action and Target mirror the webhook's instruction vocabulary so the
// dispatcher treats both sources the same way.
type CommandReply struct {
	Type     string `json:"type"`
	Response string `json:"response"`
	Action   string `json:"action,omitempty"`
	Target   string `json:"target,omitempty"`
}

// HandleLocalCommand answers a chat message from the current snapshot
// without any webhook round trip. Matching is substring-based and first
// match wins; unmatched messages get the generic capabilities reply.
func HandleLocalCommand(message string, snap *models.Snapshot) CommandReply {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "refresh") || strings.Contains(lower, "update") {
		return CommandReply{
			Type:     "refresh",
			Response: "Refreshing your dashboard data now...",
			Action:   "refresh",
		}
	}

	if strings.Contains(lower, "show data") || strings.Contains(lower, "data table") {
		return CommandReply{
			Type:     "navigate",
			Response: "Switching to data table view...",
			Action:   "navigate",
			Target:   models.ViewData,
		}
	}

	if strings.Contains(lower, "dashboard") || strings.Contains(lower, "overview") {
		return CommandReply{
			Type:     "navigate",
			Response: "Switching to dashboard overview...",
			Action:   "navigate",
			Target:   models.ViewDashboard,
		}
	}

	if strings.Contains(lower, "revenue") || strings.Contains(lower, "sales") {
		if snap != nil && snap.TotalRevenue > 0 {
			return CommandReply{
				Type: "insight",
				Response: fmt.Sprintf(
					"Your total revenue is ₹%s. This includes %d orders from %d customers.",
					formatINR(snap.TotalRevenue), snap.TotalOrders, snap.UniqueCustomers),
				Action: "highlight",
				Target: "revenue",
			}
		}
	}

	if strings.Contains(lower, "email") || strings.Contains(lower, "contact") {
		if n := emailRecordCount(snap); n > 0 {
			return CommandReply{
				Type: "insight",
				Response: fmt.Sprintf(
					"I found email data for %d customers in your database. You can view all email addresses in the data table.", n),
				Action: "navigate",
				Target: models.ViewData,
			}
		}
		return CommandReply{
			Type:     "insight",
			Response: "Email data is being processed. The system will automatically update when email information becomes available.",
			Action:   "refresh",
		}
	}

	return CommandReply{
		Type:     "general",
		Response: "I can help you with dashboard insights, data refreshing, and navigation. What would you like to know?",
	}
}

// Insights produces the suggestion strings shown alongside the chat panel.
func Insights(snap *models.Snapshot) []string {
	if snap == nil {
		return []string{"Ask me to refresh the data", "Check the connection status"}
	}

	var insights []string
	if snap.TotalRevenue > 0 {
		insights = append(insights, fmt.Sprintf("Total revenue is ₹%s", formatINR(snap.TotalRevenue)))
	}
	if len(snap.TopStates) > 0 {
		insights = append(insights, fmt.Sprintf("Top performing state: %s", snap.TopStates[0].Name))
	}
	if snap.UniqueCustomers > 0 {
		insights = append(insights, fmt.Sprintf("%d unique customers served", snap.UniqueCustomers))
	}
	if n := emailRecordCount(snap); n > 0 {
		insights = append(insights, fmt.Sprintf("Email contacts available for %d customers", n))
	}
	insights = append(insights, "Ask me about revenue trends, top customers, email data, or data insights")
	return insights
}

// emailRecordCount counts records carrying an email value.
func emailRecordCount(snap *models.Snapshot) int {
	if snap == nil {
		return 0
	}
	n := 0
	for _, rec := range snap.RawData {
		if rec.HasEmail() {
			n++
		}
	}
	return n
}

// formatINR renders an amount with Indian digit grouping: the last three
// digits, then groups of two (12,34,567).
func formatINR(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)

	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		s = strings.Join(groups, ",") + "," + tail
	}

	if neg {
		return "-" + s
	}
	return s
}
