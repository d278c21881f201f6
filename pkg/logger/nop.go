package logger

// nop discards everything. Useful as a default and in tests.
type nop struct{}

// Nop returns a logger that discards all output.
func Nop() Logger { return nop{} }

func (nop) WithField(string, any) Logger     { return nop{} }
func (nop) WithFields(map[string]any) Logger { return nop{} }
func (nop) WithError(error) Logger           { return nop{} }

func (nop) Debug(...any) {}
func (nop) Info(...any)  {}
func (nop) Warn(...any)  {}
func (nop) Error(...any) {}
func (nop) Fatal(...any) {}

func (nop) Debugf(string, ...any) {}
func (nop) Infof(string, ...any)  {}
func (nop) Warnf(string, ...any)  {}
func (nop) Errorf(string, ...any) {}
func (nop) Fatalf(string, ...any) {}

func (nop) SetLevel(Level)  {}
func (nop) GetLevel() Level { return Disabled }
