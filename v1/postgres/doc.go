// Package postgres manages the PostgreSQL connection used by the document
// store.
//
// It opens a gorm handle on the pgx driver, keeps it healthy with a
// monitor/retry loop pair and exposes the handle through DB(). The
// document store only needs DB(), so *Postgres satisfies docstore.Conn
// directly:
//
//	pg, err := postgres.NewPostgres(cfg, log)
//	if err != nil {
//		return err
//	}
//	defer pg.GracefulShutdown()
//
//	if err := pg.EnsureVectorExtension(ctx); err != nil {
//		return err
//	}
//	store, err := docstore.New(pg, &document.FullModel{})
//
// With fx, include FXModule and provide a Config:
//
//	app := fx.New(
//		logger.FXModule,
//		postgres.FXModule,
//		fx.Provide(func() postgres.Config { return cfg }),
//	)
//
// Errors returned by gorm or the driver can be normalised with
// TranslateError and classified with IsRetryable:
//
//	if err := pg.Migrate(ctx, &document.FullModel{}); err != nil {
//		if errors.Is(err, postgres.ErrUndefinedFunction) {
//			// the vector extension is missing
//		}
//	}
package postgres
