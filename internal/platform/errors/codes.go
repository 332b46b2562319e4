// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Combat errors
	CodeCharacterDead     Code = "CHARACTER_DEAD"
	CodeCombatNotActive   Code = "COMBAT_NOT_ACTIVE"
	CodeInvalidTarget     Code = "INVALID_TARGET"
	CodeAbilityOnCooldown Code = "ABILITY_ON_COOLDOWN"
	CodeInvalidAction     Code = "INVALID_ACTION"

	// Character errors
	CodeInvalidCharacterClass Code = "INVALID_CHARACTER_CLASS"
	CodeCharacterEmptyName    Code = "CHARACTER_EMPTY_NAME"
	CodeInvalidCharacterName  Code = "INVALID_CHARACTER_NAME"
	CodeInsufficientGold      Code = "INSUFFICIENT_GOLD"
	CodeInsufficientLevel     Code = "INSUFFICIENT_LEVEL"

	// Item errors
	CodeItemNotFound    Code = "ITEM_NOT_FOUND"
	CodeInvalidItemType Code = "INVALID_ITEM_TYPE"

	// Quest errors
	CodeQuestNotFound           Code = "QUEST_NOT_FOUND"
	CodeQuestRequirementsNotMet Code = "QUEST_REQUIREMENTS_NOT_MET"
	CodeQuestAlreadyCompleted   Code = "QUEST_ALREADY_COMPLETED"
	CodeQuestAlreadyActive      Code = "QUEST_ALREADY_ACTIVE"
	CodeQuestNotActive          Code = "QUEST_NOT_ACTIVE"

	// Save file errors
	CodeCharacterNotFound Code = "CHARACTER_NOT_FOUND"
	CodeSaveFileCorrupted Code = "SAVE_FILE_CORRUPTED"
	CodeInvalidSaveData   Code = "INVALID_SAVE_DATA"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// MessageKey returns the catalog key holding the user-facing message.
func (c Code) MessageKey() string {
	return "errors." + string(c)
}

// ExitCode maps domain codes to process exit statuses for CLI entry points.
func (c Code) ExitCode() int {
	switch c {
	// Usage - bad input
	case CodeInvalidTarget,
		CodeInvalidAction,
		CodeInvalidCharacterClass,
		CodeCharacterEmptyName,
		CodeInvalidCharacterName,
		CodeInvalidItemType:
		return 2

	// Precondition - state doesn't allow operation
	case CodeCharacterDead,
		CodeCombatNotActive,
		CodeAbilityOnCooldown,
		CodeInsufficientGold,
		CodeInsufficientLevel,
		CodeQuestRequirementsNotMet,
		CodeQuestAlreadyCompleted,
		CodeQuestAlreadyActive,
		CodeQuestNotActive:
		return 3

	// NotFound - resource doesn't exist
	case CodeCharacterNotFound,
		CodeItemNotFound,
		CodeQuestNotFound,
		CodeNotFound:
		return 4

	// Data - persisted state unreadable
	case CodeSaveFileCorrupted,
		CodeInvalidSaveData:
		return 5

	default:
		return 1
	}
}
