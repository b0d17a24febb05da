// DataPulse - E-Commerce Order Analytics Dashboard Backend
// Copyright 2026 DataPulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/datapulse/datapulse

// Package assistant talks to the workflow-automation webhook behind the
// dashboard's chat panel.
//
// The webhook is an external automation flow whose reply shape is not under
// our control: it may answer with a bare string, a JSON object under half a
// dozen field names, or doubly-encoded JSON. Normalize flattens all of that
// into displayable text, and ExtractInstruction pulls the structured
// dashboard-update directives out of the same reply. When the webhook is
// unreachable or unconfigured, HandleLocalCommand answers a small set of
// commands from the current snapshot instead.
package assistant
