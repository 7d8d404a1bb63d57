package npl

// options holds the configuration of a socket.
type options struct {
	logger Logger

	protocol   int  // protocol argument to socket(2)
	cloexec    bool // set close-on-exec on opened and accepted descriptors
	cloexecSet bool
}

// Option is a function that configures socket options.
type Option func(*options)

// ProtocolOption sets the protocol passed when opening the socket.
// For packet sockets it is an ethernet protocol in host byte order.
func ProtocolOption(protocol int) Option {
	return func(o *options) {
		o.protocol = protocol
	}
}

// LoggerOption sets the logger. If not set, the default slog logger is used.
// Accepted sockets inherit the logger of their listener.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// CloseOnExecOption controls whether descriptors are closed across exec.
// The default is true.
func CloseOnExecOption(enable bool) Option {
	return func(o *options) {
		o.cloexec = enable
		o.cloexecSet = true
	}
}

// checkOptions sets default values for unset options.
func checkOptions(opts *options) {
	if opts.logger == nil {
		opts.logger = defaultLogger()
	}

	if !opts.cloexecSet {
		opts.cloexec = true
	}
}

func buildOptions(opt []Option) options {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)
	return opts
}
