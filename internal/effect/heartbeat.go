package effect

// Heartbeat flashes flashBeats discrete beats at a tempo derived from bpm.
// Beats cluster in groups of groupedAs: the pause after the last beat of a
// group is stretched, which produces the accented rhythm of a paired thump
// when groupedAs is 2 or 3.
//
// Each beat is a full-brightness flash, a dark gap, and a decay ramp from the
// calibration midpoint down to the minimum. groupedAs and bpm must both be
// at least 1 or ErrInvalidParameter is returned before any write happens.
func (c *Controller) Heartbeat(flashBeats, groupedAs, bpm uint32) error {
	if groupedAs == 0 || bpm == 0 {
		return ErrInvalidParameter
	}

	period := (60_000 / bpm) / 6
	shortPeriod := period / 3

	// Decay timing comes from the lower half of the calibration range. With
	// adjacent bounds the midpoint collapses onto the minimum and the ramp
	// runs with zero delay.
	var downDelay uint32
	if span := c.dutyMid - c.dutyMin; span > 0 {
		downDelay = (period * 2) / span
	}

	for n := uint32(1); n <= flashBeats; n++ {
		c.pin.SetDuty(c.dutyMax)
		c.wait.Wait(shortPeriod)

		c.pin.SetDuty(c.dutyMin)
		c.wait.Wait(shortPeriod * 2)

		c.pin.SetDuty(c.dutyMid)

		// Inclusive ramp: unlike Breath, the value at dutyMin is written a
		// second time before the ramp ends.
		for current := c.dutyMid; current >= c.dutyMin; {
			c.pin.SetDuty(current)
			c.wait.Wait(downDelay)
			if current == 0 {
				break
			}
			current--
		}

		var pause uint32
		switch {
		case n%groupedAs != 0:
			pause = period
		case groupedAs == 1:
			pause = period * 2
		default:
			pause = (period * 2) + (groupedAs * period)
		}
		c.wait.Wait(pause)
	}

	c.pin.SetDuty(0)
	return nil
}
