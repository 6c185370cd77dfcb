package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"agribazaar/api/internal/diagnosis"
)

var ErrNotFound = sql.ErrNoRows

// DiagnosisRepo caches normalized results per (image_hash, engine).
// It satisfies diagnosis.Cache.
type DiagnosisRepo struct {
	DB     *sql.DB
	MaxAge time.Duration // 0 — возраст не проверяется
	// NotFoundMaxAge — отдельный, обычно более короткий срок для NotFound.
	NotFoundMaxAge time.Duration
}

func NewDiagnosisRepo(db *sql.DB, maxAge time.Duration) *DiagnosisRepo {
	return &DiagnosisRepo{DB: db, MaxAge: maxAge}
}

// Find возвращает закэшированный результат. Если запись старше MaxAge,
// вернёт ErrNotFound (чтобы вызвать движок заново).
func (r *DiagnosisRepo) Find(ctx context.Context, imageHash, engine string) (diagnosis.Result, error) {
	const q = `select result_json, created_at
	           from diagnosis_cache
	           where image_hash=$1 and engine=$2`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, imageHash, engine).Scan(&js, &ts); err != nil {
		return diagnosis.Result{}, err
	}
	var res diagnosis.Result
	if err := json.Unmarshal(js, &res); err != nil {
		// битый кэш — считаем, что записи нет
		return diagnosis.Result{}, ErrNotFound
	}
	if !r.fresh(res, time.Since(ts)) {
		return diagnosis.Result{}, ErrNotFound
	}
	return res, nil
}

// fresh решает, можно ли отдать запись возраста age.
func (r *DiagnosisRepo) fresh(res diagnosis.Result, age time.Duration) bool {
	switch {
	case res.IsFailure():
		return false
	case r.MaxAge > 0 && age > r.MaxAge:
		return false
	case res.IsNotFound() && r.NotFoundMaxAge > 0 && age > r.NotFoundMaxAge:
		return false
	}
	return true
}

// Upsert сохраняет/обновляет результат. PK: (image_hash, engine).
func (r *DiagnosisRepo) Upsert(ctx context.Context, imageHash, engine string, res diagnosis.Result) error {
	if res.IsFailure() {
		return errors.New("store: failures are not cached")
	}
	res.RequestID = ""
	js, err := json.Marshal(res)
	if err != nil {
		return err
	}
	const q = `
insert into diagnosis_cache(image_hash, engine, result_json, kind, plant_name)
values ($1,$2,$3,$4,$5)
on conflict (image_hash, engine)
do update set result_json=excluded.result_json,
              kind=excluded.kind,
              plant_name=excluded.plant_name,
              created_at=now()`
	_, err = r.DB.ExecContext(ctx, q, imageHash, engine, js, res.Kind.String(), nullString(res.Name))
	return err
}

// PurgeOlderThan удаляет очень старые записи-кэши, чтобы не раздувать БД.
func (r *DiagnosisRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from diagnosis_cache where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
