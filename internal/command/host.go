package command

import "context"

// host exposes a session to Lua scripts.
type host struct {
	s *Session
}

func (h host) Exec(ctx context.Context, line string) (string, error) {
	result, err := h.s.Execute(ctx, line)
	if err != nil || result == nil {
		return "", err
	}
	return result.String(), nil
}

func (h host) Read(addr string) (byte, error) {
	a, err := h.s.parseAddress(addr)
	if err != nil {
		return 0, err
	}
	return h.s.db.Source().ByteAt(a)
}

func (h host) Label(addr string) (string, bool, error) {
	a, err := h.s.parseAddress(addr)
	if err != nil {
		return "", false, err
	}
	lbl, ok := h.s.db.LabelAt(a)
	return lbl.Name, ok, nil
}

func (h host) Cursor() string {
	return h.s.cursor.String()
}
