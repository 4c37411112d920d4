package backup

// Matches reports whether a descriptor satisfies every constraint that is set
func (c Criteria) Matches(d Descriptor) bool {
	if c.Start != nil && d.CreatedAt.Before(*c.Start) {
		return false
	}
	if c.End != nil && !d.CreatedAt.Before(*c.End) {
		return false
	}
	if c.Pattern != nil && !c.Pattern.MatchString(Stem(d.Name)) {
		return false
	}
	return true
}

// Filter returns the descriptors matching c, keeping their input order
func Filter(descs []Descriptor, c Criteria) []Descriptor {
	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		if c.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
