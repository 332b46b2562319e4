// Package arena parses arena command flags and runs an interactive battle.
package arena

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/quest-chronicles/internal/encounter"
	"github.com/louisbranch/quest-chronicles/internal/game/character"
	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	"github.com/louisbranch/quest-chronicles/internal/game/enemy"
	"github.com/louisbranch/quest-chronicles/internal/narration"
	entrypoint "github.com/louisbranch/quest-chronicles/internal/platform/cmd"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
	"github.com/louisbranch/quest-chronicles/internal/platform/timeouts"
	"github.com/louisbranch/quest-chronicles/internal/storage/savefile"
	"github.com/louisbranch/quest-chronicles/internal/storage/sqlite"
)

const historyLimit = 10

// Config holds arena command configuration.
type Config struct {
	SaveDir         string `env:"QUEST_CHRONICLES_SAVE_DIR"         envDefault:"data/save_games"`
	JournalPath     string `env:"QUEST_CHRONICLES_JOURNAL_PATH"     envDefault:"data/journal.db"`
	Locale          string `env:"QUEST_CHRONICLES_LOCALE"           envDefault:"en-US"`
	MaxTurns        int    `env:"QUEST_CHRONICLES_MAX_TURNS"        envDefault:"100"`
	AbilityCooldown int    `env:"QUEST_CHRONICLES_ABILITY_COOLDOWN" envDefault:"0"`
	Seed            int64  `env:"QUEST_CHRONICLES_SEED"`
	Character       string `env:"QUEST_CHRONICLES_CHARACTER"`
	Class           string `env:"QUEST_CHRONICLES_CLASS"`
	Enemy           string `env:"QUEST_CHRONICLES_ENEMY"`

	History bool
	List    bool
	// Revive brings a defeated character back at half health before the fight.
	Revive bool

	Errands Errands
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Character, "character", cfg.Character, "Name of the character to fight with")
	fs.StringVar(&cfg.Class, "class", cfg.Class, "Class for a new character (Warrior, Mage, Rogue, Cleric)")
	fs.StringVar(&cfg.Enemy, "enemy", cfg.Enemy, "Enemy to fight (goblin, orc, dragon); defaults to one matching the character level")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Narration locale")
	fs.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "Directory holding character save files")
	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "Path to the SQLite battle journal")
	fs.IntVar(&cfg.MaxTurns, "max-turns", cfg.MaxTurns, "Turns before a battle ends in a draw (0 disables)")
	fs.IntVar(&cfg.AbilityCooldown, "cooldown", cfg.AbilityCooldown, "Turns between class ability uses (0 disables)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Replay a battle with this seed (0 picks a random one)")
	fs.BoolVar(&cfg.History, "history", false, "Show the character's recent battles and exit")
	fs.BoolVar(&cfg.List, "list", false, "List saved characters and exit")
	fs.BoolVar(&cfg.Revive, "revive", false, "Revive a defeated character at half health before fighting")
	cfg.Errands.register(fs)
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the arena command, reading choices from in.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArena, func(ctx context.Context) error {
		return run(ctx, cfg, in, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, errOut io.Writer) error {
	logger := log.New(errOut, "", 0)
	narrator := narration.New(out, cfg.Locale)
	saves := savefile.New(cfg.SaveDir)

	if cfg.List {
		return listCharacters(ctx, saves, narrator)
	}

	name := strings.TrimSpace(cfg.Character)
	if name == "" {
		return character.ErrEmptyName
	}

	if cfg.Errands.Any() {
		return runErrands(ctx, cfg.Errands, saves, name, narrator)
	}

	journal, err := openJournal(ctx, cfg.JournalPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Printf("close journal: %v", err)
		}
	}()

	if cfg.History {
		return showHistory(ctx, journal, name, narrator)
	}

	class := combat.ClassUnspecified
	if strings.TrimSpace(cfg.Class) != "" {
		class, err = combat.ParseClass(cfg.Class)
		if err != nil {
			return err
		}
	}

	enemies, err := enemy.Default()
	if err != nil {
		return fmt.Errorf("load enemies: %w", err)
	}
	svc, err := encounter.NewService(saves, enemies,
		encounter.WithJournal(journal),
		encounter.WithMaxTurns(cfg.MaxTurns),
		encounter.WithAbilityCooldown(cfg.AbilityCooldown),
	)
	if err != nil {
		return err
	}

	summary, err := svc.Fight(ctx, encounter.Request{
		Character: name,
		Class:     class,
		Enemy:     cfg.Enemy,
		Seed:      cfg.Seed,
		Revive:    cfg.Revive,
		Decider:   newPromptDecider(in, narrator),
		Observer:  narrator,
		OnStart: func(c *character.Character, _ *combat.Combatant, created bool) {
			if created {
				narrator.Say("cli.character_created", c.Name, c.Class.String())
			}
		},
		OnRevive: func(c *character.Character) {
			narrator.Say("cli.revived", c.Name, c.Health)
		},
	})
	if err != nil {
		return err
	}
	logger.Printf("battle %s: %s vs %s ended %s (seed %d)", summary.Record.ID, summary.Character.Name, summary.Record.Enemy, summary.Result.Winner, summary.Record.Seed)
	printResult(narrator, summary)
	return nil
}

func openJournal(ctx context.Context, path string) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	openCtx, cancel := context.WithTimeout(ctx, timeouts.StorageOpen)
	defer cancel()
	return sqlite.Open(openCtx, path)
}

func printResult(n *narration.Narrator, summary encounter.Summary) {
	result := summary.Result
	switch result.Winner {
	case combat.OutcomePlayer:
		n.Say("cli.result.player", result.XPGained, result.GoldGained)
	case combat.OutcomeEnemy:
		n.Say("cli.result.enemy")
	case combat.OutcomeEscaped:
		n.Say("cli.result.escaped")
	case combat.OutcomeDraw:
		n.Say("cli.result.draw")
	}
	if summary.Progress.LevelsGained > 0 {
		n.Say("cli.level_up", summary.Character.Name, summary.Character.Level)
	}
}

func listCharacters(ctx context.Context, saves *savefile.Store, n *narration.Narrator) error {
	names, err := saves.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		n.Say("cli.characters.empty")
		return nil
	}
	n.Say("cli.characters.header")
	for _, name := range names {
		c, err := saves.Load(ctx, name)
		if err != nil {
			// Unreadable saves are listed by name only.
			n.Println("  " + name + ": " + n.ErrorMessage(err))
			continue
		}
		n.Say("cli.characters.line", c.Name, c.Level, c.Class.String(), c.Health, c.MaxHealth, c.Gold)
	}
	return nil
}

func showHistory(ctx context.Context, journal *sqlite.Store, name string, n *narration.Narrator) error {
	battles, err := journal.ListBattles(ctx, name, historyLimit)
	if err != nil {
		return err
	}
	if len(battles) == 0 {
		n.Say("cli.history.empty")
		return nil
	}
	n.Say("cli.history.header", name)
	for _, b := range battles {
		n.Say("cli.history.line",
			b.EndedAt.Local().Format("2006-01-02 15:04"),
			b.Enemy, b.Outcome.String(), b.Turns, b.XPGained, b.GoldGained,
		)
	}
	stats, err := journal.Stats(ctx, name)
	if err != nil {
		return err
	}
	n.Say("cli.history.stats", stats.Wins, stats.Losses, stats.Escapes, stats.Draws)
	return nil
}

// ExitCode maps a Run error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return apperrors.CodeOf(err).ExitCode()
}

// ErrorMessage renders a Run error for the player in the configured locale.
// Errors without a domain code keep their original text.
func ErrorMessage(locale string, err error) string {
	if err == nil {
		return ""
	}
	if apperrors.CodeOf(err) == apperrors.CodeUnknown {
		return err.Error()
	}
	return narration.New(nil, locale).ErrorMessage(err)
}
