// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// Two programs are provided:
//  1. [WaitModel] : The waiting dialog shown while a capture runs, with a progress bar, the serving address
//     and the time left. q, esc or ctrl+c cancel the wait.
//  2. [HistoryModel] : A browsable list of saved captures with a detail view.
//
// Both implement bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the CaptureEngine, providing non-blocking status reporting
// while the catcher waits for the browser extension.
package ui
