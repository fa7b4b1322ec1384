// Package logger wraps zerolog with the structured fields used across llmkit.
//
// Components obtain a tagged logger through Get:
//
//	log := logger.Get("llm")
//	log.Info("generate finished", logger.Fields(logger.FieldProvider, "openai"))
//
// Library code never configures the process logger; binaries call Init once.
package logger
