package chain

import (
	"github.com/yanizio/adept-rest/internal/extract"
)

// Step0 wraps a transformation that needs nothing from the request.
func Step0[T any](fn func(v T) (T, error)) Item[T] {
	return ItemFunc[T](func(_ *extract.Context, _ extract.State, v T) (T, error) {
		return fn(v)
	})
}

// Step1 extracts one argument, then transforms.
func Step1[T, A any](a extract.Extractor[A], fn func(v T, a A) (T, error)) Item[T] {
	return ItemFunc[T](func(rc *extract.Context, st extract.State, v T) (T, error) {
		av, err := a.Extract(rc, st)
		if err != nil {
			return v, err
		}
		return fn(v, av)
	})
}

// Step2 extracts two arguments left to right, then transforms.
func Step2[T, A, B any](
	a extract.Extractor[A], b extract.Extractor[B],
	fn func(v T, a A, b B) (T, error),
) Item[T] {
	return ItemFunc[T](func(rc *extract.Context, st extract.State, v T) (T, error) {
		av, err := a.Extract(rc, st)
		if err != nil {
			return v, err
		}
		bv, err := b.Extract(rc, st)
		if err != nil {
			return v, err
		}
		return fn(v, av, bv)
	})
}

// Step3 extracts three arguments left to right, then transforms.
func Step3[T, A, B, C any](
	a extract.Extractor[A], b extract.Extractor[B], c extract.Extractor[C],
	fn func(v T, a A, b B, c C) (T, error),
) Item[T] {
	return ItemFunc[T](func(rc *extract.Context, st extract.State, v T) (T, error) {
		av, err := a.Extract(rc, st)
		if err != nil {
			return v, err
		}
		bv, err := b.Extract(rc, st)
		if err != nil {
			return v, err
		}
		cv, err := c.Extract(rc, st)
		if err != nil {
			return v, err
		}
		return fn(v, av, bv, cv)
	})
}

// Step4 extracts four arguments left to right, then transforms.
func Step4[T, A, B, C, D any](
	a extract.Extractor[A], b extract.Extractor[B], c extract.Extractor[C], d extract.Extractor[D],
	fn func(v T, a A, b B, c C, d D) (T, error),
) Item[T] {
	return ItemFunc[T](func(rc *extract.Context, st extract.State, v T) (T, error) {
		av, err := a.Extract(rc, st)
		if err != nil {
			return v, err
		}
		bv, err := b.Extract(rc, st)
		if err != nil {
			return v, err
		}
		cv, err := c.Extract(rc, st)
		if err != nil {
			return v, err
		}
		dv, err := d.Extract(rc, st)
		if err != nil {
			return v, err
		}
		return fn(v, av, bv, cv, dv)
	})
}

// StepN covers any arity.  fn receives the extracted values in order; use
// extract.As to read them back.
func StepN[T any](fn func(v T, args []any) (T, error), exts ...extract.Erased) Item[T] {
	return ItemFunc[T](func(rc *extract.Context, st extract.State, v T) (T, error) {
		args, err := extract.All(rc, st, exts...)
		if err != nil {
			return v, err
		}
		return fn(v, args)
	})
}
