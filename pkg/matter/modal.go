package matter

// Modal is a visibility flag with a plain open/close life cycle. Modals share
// no state with each other.
type Modal struct {
	open bool
}

// Open shows the modal.
func (m *Modal) Open() { m.open = true }

// Close hides the modal.
func (m *Modal) Close() { m.open = false }

// IsOpen reports whether the modal is visible.
func (m Modal) IsOpen() bool { return m.open }
