/*
Package logging builds the slog loggers used by redismodel commands.

Libraries in this module never configure logging themselves; stores and
backend clients take a *slog.Logger option and fall back to slog.Default().
Commands call Init once at startup:

	logger := logging.Init(cfg.Log.Level, cfg.Log.Format)
	store, err := model.NewPerKey[IceCream](client, codec.NewJSON[IceCream](), model.Options{Logger: logger})
*/
package logging
