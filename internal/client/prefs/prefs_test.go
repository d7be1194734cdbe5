package prefs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DikaaDK/Chronos-sub000/internal/client/repositories/metadata"
	"github.com/DikaaDK/Chronos-sub000/internal/client/storage"
	"github.com/DikaaDK/Chronos-sub000/internal/logging"
)

func setup(t *testing.T) (*Prefs, *sql.DB) {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, logging.Nop{}), db
}

func TestLoad_EmptyDatabaseGivesDefaults(t *testing.T) {
	p, _ := setup(t)
	assert.Equal(t, Defaults(), p.Load(context.Background()))
}

func TestSetters_PersistAcrossInstances(t *testing.T) {
	p, db := setup(t)
	ctx := context.Background()

	locale, err := p.SetLocale(ctx, "en-US")
	require.NoError(t, err)
	assert.Equal(t, "en", locale)
	require.NoError(t, p.SetTheme(ctx, "Dark"))
	require.NoError(t, p.SetFontSize(ctx, "large"))
	require.NoError(t, p.RememberEmail(ctx, " me@example.com "))

	reloaded := New(db, logging.Nop{}).Load(ctx)
	assert.Equal(t, Values{
		RememberedEmail: "me@example.com",
		Locale:          "en",
		Display:         Display{Theme: ThemeDark, FontSize: FontLarge},
	}, reloaded)
}

func TestRememberEmail_EmptyForgets(t *testing.T) {
	p, db := setup(t)
	ctx := context.Background()

	require.NoError(t, p.RememberEmail(ctx, "me@example.com"))
	require.NoError(t, p.RememberEmail(ctx, ""))

	v, err := metadata.NewSQLiteRepository(db).Get(ctx, KeyRememberedEmail)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Empty(t, p.Current().RememberedEmail)
}

func TestSetters_RejectInvalidValues(t *testing.T) {
	p, _ := setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, p.SetTheme(ctx, "neon"), ErrInvalidValue)
	assert.ErrorIs(t, p.SetFontSize(ctx, "huge"), ErrInvalidValue)
	assert.Equal(t, Defaults().Display, p.Current().Display)

	locale, err := p.SetLocale(ctx, "fr")
	require.NoError(t, err)
	assert.Equal(t, "id", locale, "unsupported locale falls back to default")
}

func TestLoad_CorruptValuesFallBackToDefaults(t *testing.T) {
	p, db := setup(t)
	ctx := context.Background()
	repo := metadata.NewSQLiteRepository(db)

	require.NoError(t, repo.Set(ctx, KeyLocale, []byte(`{not json`)))
	require.NoError(t, repo.Set(ctx, KeyDisplay, []byte(`{"theme":"purple","font_size":"small"}`)))
	require.NoError(t, repo.Set(ctx, KeyRememberedEmail, []byte(`42`)))

	got := p.Load(ctx)
	assert.Equal(t, Values{
		Locale:  "id",
		Display: Display{Theme: ThemeLight, FontSize: FontSmall},
	}, got)
}

func TestLoad_UnreadableDatabaseFallsBackToDefaults(t *testing.T) {
	p, db := setup(t)
	require.NoError(t, db.Close())

	assert.Equal(t, Defaults(), p.Load(context.Background()))
}

func TestSave_WritesCachedValues(t *testing.T) {
	p, db := setup(t)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx))

	raw, err := metadata.NewSQLiteRepository(db).Get(ctx, KeyDisplay)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"light","font_size":"medium"}`, string(raw))
}

func TestStoredAndReset(t *testing.T) {
	p, db := setup(t)
	ctx := context.Background()

	recs, err := p.Stored(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, p.RememberEmail(ctx, "me@example.com"))
	require.NoError(t, p.SetTheme(ctx, ThemeDark))

	recs, err = p.Stored(ctx)
	require.NoError(t, err)
	keys := make([]string, 0, len(recs))
	for _, r := range recs {
		keys = append(keys, r.Key)
		assert.False(t, r.UpdatedAt.IsZero(), r.Key)
	}
	assert.Equal(t, []string{KeyDisplay, KeyLocale, KeyRememberedEmail}, keys)

	require.NoError(t, p.Reset(ctx))
	assert.Equal(t, Defaults(), p.Current())
	assert.Equal(t, Defaults(), New(db, logging.Nop{}).Load(ctx))

	recs, err = p.Stored(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestStored_ClosedDatabase(t *testing.T) {
	p, db := setup(t)
	require.NoError(t, db.Close())

	_, err := p.Stored(context.Background())
	assert.Error(t, err)
	assert.Error(t, p.Reset(context.Background()))
}
