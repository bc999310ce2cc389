package project

// Counters on a document are watermarks: they hold the largest id ever
// assigned on their axis, never the next free value. A fresh id is always
// watermark+1 and every insertion raises the watermark to max(old, id), so
// documents edited by hand with gaps in their ids keep working.

// NextClipID returns the id the next inserted clip receives.
func (d *Document) NextClipID() int {
	return d.ClipIDCounter + 1
}

// ObserveClipID raises the clip watermark to cover id.
func (d *Document) ObserveClipID(id int) {
	if id > d.ClipIDCounter {
		d.ClipIDCounter = id
	}
}

// NextTrackID returns the id the next created track receives.
func (d *Document) NextTrackID() int {
	return d.TrackIDCounter + 1
}

// ObserveTrackID raises the track watermark to cover id.
func (d *Document) ObserveTrackID(id int) {
	if id > d.TrackIDCounter {
		d.TrackIDCounter = id
	}
}

// MaxClipID returns the largest clip id present, or 0.
func (d *Document) MaxClipID() int {
	maxID := 0
	for _, c := range d.TimelineClips {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	return maxID
}

// MaxTrackID returns the largest track number referenced by a track entry
// or a clip, or 0.
func (d *Document) MaxTrackID() int {
	maxID := 0
	for _, t := range d.Tracks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	for _, c := range d.TimelineClips {
		if c.Track > maxID {
			maxID = c.Track
		}
	}
	return maxID
}
