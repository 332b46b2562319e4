package character

import (
	"fmt"
	"slices"

	"github.com/louisbranch/quest-chronicles/internal/game/quest"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

// QuestActive reports whether id is in progress.
func (c *Character) QuestActive(id string) bool {
	return slices.Contains(c.ActiveQuests, id)
}

// QuestCompleted reports whether id was completed.
func (c *Character) QuestCompleted(id string) bool {
	return slices.Contains(c.CompletedQuests, id)
}

// CanAcceptQuest reports whether AcceptQuest would succeed.
func (c *Character) CanAcceptQuest(q quest.Quest) bool {
	return c.checkAccept(q) == nil
}

// AcceptQuest makes q active. The character must meet the level requirement
// and have completed the prerequisite.
func (c *Character) AcceptQuest(q quest.Quest) error {
	if err := c.checkAccept(q); err != nil {
		return err
	}
	c.ActiveQuests = append(c.ActiveQuests, q.ID)
	return nil
}

func (c *Character) checkAccept(q quest.Quest) error {
	meta := map[string]string{"name": c.Name, "quest": q.ID}
	switch {
	case c.QuestCompleted(q.ID):
		return apperrors.WithMetadata(apperrors.CodeQuestAlreadyCompleted,
			fmt.Sprintf("%s already completed %q", c.Name, q.ID), meta)
	case c.QuestActive(q.ID):
		return apperrors.WithMetadata(apperrors.CodeQuestAlreadyActive,
			fmt.Sprintf("%s is already on %q", c.Name, q.ID), meta)
	case c.Level < q.RequiredLevel:
		return apperrors.WithMetadata(apperrors.CodeInsufficientLevel,
			fmt.Sprintf("%q requires level %d, %s is level %d", q.ID, q.RequiredLevel, c.Name, c.Level), meta)
	case q.Prerequisite != "" && !c.QuestCompleted(q.Prerequisite):
		return apperrors.WithMetadata(apperrors.CodeQuestRequirementsNotMet,
			fmt.Sprintf("%q requires %q first", q.ID, q.Prerequisite), meta)
	}
	return nil
}

// CompleteQuest moves an active quest to completed and grants its rewards.
// Experience can level the character up, as battle rewards do.
func (c *Character) CompleteQuest(q quest.Quest) (Progress, error) {
	if !c.QuestActive(q.ID) {
		return Progress{}, questNotActive(c.Name, q.ID)
	}
	if c.Defeated() {
		return Progress{}, apperrors.WithMetadata(
			apperrors.CodeCharacterDead,
			fmt.Sprintf("%s cannot complete quests while defeated", c.Name),
			map[string]string{"name": c.Name},
		)
	}
	levels, err := c.GainExperience(q.RewardXP)
	if err != nil {
		return Progress{}, err
	}
	if _, err := c.AddGold(q.RewardGold); err != nil {
		return Progress{}, err
	}
	c.ActiveQuests = slices.DeleteFunc(c.ActiveQuests, func(id string) bool { return id == q.ID })
	c.CompletedQuests = append(c.CompletedQuests, q.ID)
	return Progress{XPGained: q.RewardXP, GoldGained: q.RewardGold, LevelsGained: levels}, nil
}

// AbandonQuest drops an active quest without rewards.
func (c *Character) AbandonQuest(id string) error {
	if !c.QuestActive(id) {
		return questNotActive(c.Name, id)
	}
	c.ActiveQuests = slices.DeleteFunc(c.ActiveQuests, func(active string) bool { return active == id })
	return nil
}

func questNotActive(name, id string) error {
	return apperrors.WithMetadata(
		apperrors.CodeQuestNotActive,
		fmt.Sprintf("%s is not on %q", name, id),
		map[string]string{"name": name, "quest": id},
	)
}
