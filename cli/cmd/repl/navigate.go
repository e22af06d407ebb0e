package repl

// historyMove moves from the current history position in the direction of
// step (-1 toward older, 1 toward newer) to the nearest entry accepted by
// keep. The input takes the entry's line and mode. It reports false, leaving
// the model unchanged, if no such entry exists.
func (m model) historyMove(step int, keep func(HistoryEntry) bool) (model, bool) {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || !keep(entry) {
			continue
		}

		m.historyIdx = i

		if m.mode != entry.Mode {
			m = m.switchToMode(entry.Mode)
		}

		m.setInput(entry.Line)

		return m, true
	}

	return m, false
}

// historyEnd moves past the newest entry and clears the input.
func (m model) historyEnd() model {
	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.setInput("")
	}

	return m
}

// historyAny navigates all entries, switching mode to match each.
func (m model) historyAny(step int) model {
	moved, ok := m.historyMove(step, func(HistoryEntry) bool { return true })
	if !ok && step > 0 {
		return m.historyEnd()
	}

	return moved
}

// historyInMode navigates only the entries of the current mode.
func (m model) historyInMode(step int) model {
	mode := m.mode

	moved, ok := m.historyMove(step, func(e HistoryEntry) bool { return e.Mode == mode })
	if !ok && step > 0 {
		return m.historyEnd()
	}

	return moved
}

// historyCtrl switches to control mode and navigates its entries. Reaching
// either end of the control history restores the mode and input that were
// active when the navigation began.
func (m model) historyCtrl(step int) model {
	if !m.altNavActive {
		m.altNavActive = true
		m.altNavOrigMode = m.mode
		m.altNavOrigText = m.input.Value()
		m.altNavOrigCursor = m.input.Position()

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	moved, ok := m.historyMove(step, func(e HistoryEntry) bool { return e.Mode == modeCtrl })
	if ok {
		return moved
	}

	m.altNavActive = false

	if m.altNavOrigMode != m.mode {
		m = m.switchToMode(m.altNavOrigMode)
	}

	m.input.SetValue(m.altNavOrigText)
	m.input.SetCursor(m.altNavOrigCursor)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

// toggleMode switches between eval and control modes.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the given mode. The input of the mode being left
// is saved and the input last entered in the other mode is restored.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
