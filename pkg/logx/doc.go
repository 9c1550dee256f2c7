// Package logx configures housebot's structured logging.
//
// A small wrapper (logx.Logger) over zerolog keeps:
//   - console output readable (short timestamp + short caller)
//   - file output JSON-structured
//   - an optional Telegram sink (min level + rate limiting) that mirrors
//     warnings and errors to a log chat
package logx
