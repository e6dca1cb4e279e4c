package effect

// Breath fades the LED from the minimum calibration bound up to the maximum
// and back over roughly durationMS milliseconds, holds dark, then switches
// the output fully off.
//
// The duration is cut into six nominal phases: one for the rise, one for the
// fall, two for the final hold, and the rest is headroom. A duration small
// enough to truncate the per-step delay to zero simply ramps at the fastest
// rate the hardware allows; that is accepted behavior, not an error.
func (c *Controller) Breath(durationMS uint32) error {
	period := durationMS / 6
	span := c.dutyMax - c.dutyMin
	// The fall reuses the rise timing.
	upDelay := (period * 2) / span
	downDelay := (period * 2) / span

	for current := c.dutyMin; current < c.dutyMax; current = satAdd(current, 1) {
		c.pin.SetDuty(current)
		c.wait.Wait(upDelay)
	}

	for current := c.dutyMax; current > c.dutyMin; current = satSub(current, 1) {
		c.pin.SetDuty(current)
		c.wait.Wait(downDelay)
	}

	c.wait.Wait(period * 2)
	c.pin.SetDuty(0)
	return nil
}
