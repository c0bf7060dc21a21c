package game

import (
	"time"

	"github.com/robalobadob/matchup/internal/timeline"
)

// revealSteps uncovers the active row, deals the tray and hands control to
// the player. Medium raises clouds over the row before the tray opens.
func (c *Controller) revealSteps() []timeline.Step {
	t := c.timings
	steps := []timeline.Step{
		timeline.Wait(t.InitWait),
		{Name: "reveal_row", Run: func() error {
			row := c.sess.ActiveRow()
			if err := row.Reveal(); err != nil {
				return err
			}
			c.emit(Command{Kind: CmdRevealRow, Row: row.ID, Theme: row.Theme(), Duration: t.CoverMove})
			if err := c.dealTray(row); err != nil {
				return err
			}
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipSlide})
			return nil
		}, Wait: t.CoverStep()},
	}
	if c.sess.Level.SuperMode == Medium {
		steps = append(steps,
			timeline.Wait(t.WaitBeforeClouds),
			timeline.Step{Name: "show_clouds", Run: func() error {
				row := c.sess.ActiveRow()
				if err := row.Obscure(); err != nil {
					return err
				}
				c.emit(Command{Kind: CmdShowClouds, Row: row.ID, Duration: c.cloudRise()})
				return nil
			}, Wait: t.Cloud},
		)
	}
	steps = append(steps, timeline.Step{Name: "uncover_tray", Run: func() error {
		c.openTray()
		return nil
	}, Wait: t.CoverStep()})
	return steps
}

// previewSteps is the Hard countdown: the whole row, missing item
// included, stays visible for HardPreview, then the row is covered and the
// missing item goes back into the tray.
func (c *Controller) previewSteps() []timeline.Step {
	t := c.timings
	return []timeline.Step{
		timeline.Wait(t.InitWait),
		{Name: "preview_row", Run: func() error {
			row := c.sess.ActiveRow()
			if err := row.Reveal(); err != nil {
				return err
			}
			row.MissingShown = true
			c.rowShown = true
			c.emit(Command{Kind: CmdRevealRow, Row: row.ID, Theme: row.Theme(), Item: row.MissingItem(),
				Slot: row.Layout.MissingSlot, Duration: t.CoverMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipUncover})
			return nil
		}, Wait: t.CoverStep() + t.HardPreview},
		{Name: "cover_row", Run: func() error {
			row := c.sess.ActiveRow()
			row.Cover()
			row.MissingShown = false
			c.rowShown = false
			c.emit(Command{Kind: CmdCoverRow, Row: row.ID, Duration: t.CoverMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipCover})
			return nil
		}, Wait: t.CoverMove},
		{Name: "withdraw_item", Run: func() error {
			row := c.sess.ActiveRow()
			c.emit(Command{Kind: CmdRemoveItem, Row: row.ID, Slot: row.Layout.MissingSlot, Item: row.MissingItem()})
			if err := c.dealTray(row); err != nil {
				return err
			}
			c.openTray()
			return nil
		}, Wait: t.CoverStep()},
		timeline.Do("timer_done", func() error { return c.fire(evTimerDone) }),
	}
}

// placeSteps animates a correct pick into its slot and files the picture.
func (c *Controller) placeSteps(item string) []timeline.Step {
	t := c.timings
	return []timeline.Step{
		{Name: "place_item", Run: func() error {
			row := c.sess.ActiveRow()
			c.trayOpen = false
			if row.Covered {
				if err := row.Reveal(); err != nil {
					return err
				}
				c.rowShown = true
				c.emit(Command{Kind: CmdRevealRow, Row: row.ID, Theme: row.Theme(), Duration: t.CoverMove})
			}
			row.Complete()
			c.emit(Command{Kind: CmdPlaceItem, Row: row.ID, Slot: row.Layout.MissingSlot, Item: item, Duration: 3 * t.ItemMove})
			return nil
		}, Wait: 3 * t.ItemMove},
		{Name: "celebrate", Run: func() error {
			row := c.sess.ActiveRow()
			c.emit(Command{Kind: CmdParticles, Row: row.ID, Slot: row.Layout.MissingSlot})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipCorrect})
			c.sess.Reel.Add(c.sess.snapshotActive(c.rng))
			return nil
		}, Wait: t.UnlockGrace},
	}
}

// wrongSteps sends a wrong pick to the row and straight back to the tray.
func (c *Controller) wrongSteps(item string) []timeline.Step {
	t := c.timings
	return []timeline.Step{
		{Name: "place_item", Run: func() error {
			row := c.sess.ActiveRow()
			c.emit(Command{Kind: CmdPlaceItem, Row: row.ID, Slot: row.Layout.MissingSlot, Item: item, Duration: t.ItemMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipWrong})
			return nil
		}, Wait: t.ItemMove},
		{Name: "return_item", Run: func() error {
			c.emit(Command{Kind: CmdReturnItem, Row: c.sess.Current, Item: item, Duration: t.ItemMove})
			return nil
		}, Wait: t.ItemMove},
		timeline.Wait(t.UnlockGrace),
	}
}

// closeRowSteps covers the solved row and the tray, moves to the next row
// and shows the newest picture.
func (c *Controller) closeRowSteps() []timeline.Step {
	t := c.timings
	steps := c.coverSteps(true)
	return append(steps, timeline.Step{Name: "show_img", Run: func() error {
		if err := c.fire(evRowDone); err != nil {
			return err
		}
		c.sess.Reel.Begin(false)
		c.emit(Command{Kind: CmdShowReel, Reel: c.sess.Reel.Items(), Cursor: c.sess.Reel.Cursor()})
		c.emit(Command{Kind: CmdSlideReel, Dir: Forward, Cursor: c.sess.Reel.Cursor(), Duration: t.ReelMove})
		c.emit(Command{Kind: CmdPlaySound, Clip: ClipSlide})
		return nil
	}, Wait: t.ReelMove})
}

// endGameSteps closes the last row, advances the level and opens the full
// reel on its first picture.
func (c *Controller) endGameSteps() []timeline.Step {
	t := c.timings
	steps := c.coverSteps(false)
	return append(steps,
		timeline.Step{Name: "end_game", Run: func() error {
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipEndGame})
			return nil
		}, Wait: t.CoverStep()},
		timeline.Step{Name: "show_reel", Run: func() error {
			done := c.sess.Level
			c.sess.Level = AdvanceLevel(done)
			c.sess.LevelsCompleted++
			c.log.Info().
				Str("completed", done.String()).
				Str("next", c.sess.Level.String()).
				Int("picks", c.sess.Picks).
				Int("mistakes", c.sess.Mistakes).
				Msg("level complete")
			if err := c.fire(evLevelDone); err != nil {
				return err
			}
			c.sess.Reel.Begin(true)
			c.emit(Command{Kind: CmdShowReel, Reel: c.sess.Reel.Items(), Cursor: c.sess.Reel.Cursor(), Duration: t.ReelMove})
			return nil
		}, Wait: t.ReelMove},
	)
}

// coverSteps lifts clouds if any, covers the row, then the tray. The row
// cover always settles before the tray moves.
func (c *Controller) coverSteps(advance bool) []timeline.Step {
	t := c.timings
	var steps []timeline.Step
	if row := c.sess.ActiveRow(); row != nil && row.State == RowObscured {
		steps = append(steps, timeline.Step{Name: "hide_clouds", Run: func() error {
			row.ClearClouds()
			c.emit(Command{Kind: CmdHideClouds, Row: row.ID, Duration: t.Cloud})
			return nil
		}, Wait: t.Cloud})
	}
	return append(steps,
		timeline.Step{Name: "close_row", Run: func() error {
			row := c.sess.ActiveRow()
			if err := row.Close(); err != nil {
				return err
			}
			c.rowShown = false
			c.emit(Command{Kind: CmdCoverRow, Row: row.ID, Duration: t.CoverMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipCover})
			if advance {
				c.sess.Current = (c.sess.Current + 1) % len(c.sess.Rows)
			}
			return nil
		}, Wait: t.CoverStep()},
		timeline.Step{Name: "cover_tray", Run: func() error {
			c.trayOpen = false
			c.sess.Tray = nil
			c.emit(Command{Kind: CmdCoverTray, Duration: t.CoverMove})
			return nil
		}, Wait: t.CoverStep()},
	)
}

// switchSteps swaps the Hard-mode covers: one slides shut, then the other
// opens.
func (c *Controller) switchSteps() []timeline.Step {
	t := c.timings
	row := c.sess.ActiveRow()
	if c.rowShown {
		return []timeline.Step{
			{Name: "cover_row", Run: func() error {
				row.Cover()
				c.rowShown = false
				c.emit(Command{Kind: CmdCoverRow, Row: row.ID, Duration: t.CoverMove})
				c.emit(Command{Kind: CmdPlaySound, Clip: ClipCover})
				return nil
			}, Wait: t.CoverStep()},
			{Name: "uncover_tray", Run: func() error {
				c.openTray()
				return nil
			}, Wait: t.CoverStep()},
		}
	}
	return []timeline.Step{
		{Name: "cover_tray", Run: func() error {
			c.trayOpen = false
			c.emit(Command{Kind: CmdCoverTray, Duration: t.CoverMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipCover})
			return nil
		}, Wait: t.CoverStep()},
		{Name: "reveal_row", Run: func() error {
			if err := row.Reveal(); err != nil {
				return err
			}
			c.rowShown = true
			c.emit(Command{Kind: CmdRevealRow, Row: row.ID, Theme: row.Theme(), Duration: t.CoverMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipUncover})
			return nil
		}, Wait: t.CoverStep()},
	}
}

// exitReelSteps slides the reel away. Leaving the full reel for another
// level waits for the covers before the rebuild.
func (c *Controller) exitReelSteps(from State, replay bool) []timeline.Step {
	t := c.timings
	steps := []timeline.Step{
		{Name: "slide_out", Run: func() error {
			c.emit(Command{Kind: CmdSlideReel, Dir: Forward, Cursor: c.sess.Reel.Cursor(), Duration: t.ReelMove})
			c.emit(Command{Kind: CmdPlaySound, Clip: ClipSlide})
			return nil
		}, Wait: t.ReelMove},
		timeline.Do("hide_reel", func() error {
			c.sess.Reel.End()
			c.emit(Command{Kind: CmdHideReel})
			return nil
		}),
	}
	if from == StateShowReel && replay {
		steps = append(steps, timeline.Wait(t.CoverMove))
	}
	return steps
}

// dealTray builds the tray for row and shows it covered.
func (c *Controller) dealTray(row *Row) error {
	set, err := BuildSelectionTiered(row, c.themes, c.sess.Level.SuperMode, c.rng)
	if err != nil {
		return err
	}
	if err := set.validate(row); err != nil {
		return err
	}
	if set.Tier != TierStrict {
		c.log.Warn().Str("theme", row.Theme()).Str("tier", set.Tier.String()).Msg("tray constraints relaxed")
	}
	c.sess.Tray = &set
	c.emit(Command{Kind: CmdShowTray, Row: row.ID, Tray: append([]Candidate(nil), set.Candidates...)})
	return nil
}

func (c *Controller) openTray() {
	c.trayOpen = true
	c.emit(Command{Kind: CmdUncoverTray, Duration: c.timings.CoverMove})
	c.emit(Command{Kind: CmdPlaySound, Clip: ClipUncover})
}

// cloudRise picks a rise time that still ends within the Cloud wait.
func (c *Controller) cloudRise() time.Duration {
	if c.timings.CloudRange <= 0 {
		return c.timings.Cloud
	}
	d := c.timings.Cloud - time.Duration(c.rng.Int64N(int64(c.timings.CloudRange)+1))
	if d < 0 {
		return 0
	}
	return d
}
