package stdlib

import (
	"atlas/internal/atlaserr"
	"atlas/internal/value"
)

func init() {
	register("queueEnqueue", qEnqueue)
	register("queueDequeue", qDequeue)
	register("queuePeek", qPeek)
	register("queueLen", qLen)
	register("queueClear", qClear)

	register("stackPush", stPush)
	register("stackPop", stPop)
	register("stackPeek", stPeek)
	register("stackLen", stLen)
	register("stackClear", stClear)
}

func asQueue(ctx Context, v value.Value, who string) (*value.Queue, *atlaserr.RuntimeError) {
	q, ok := v.(*value.Queue)
	if !ok {
		return nil, typeErr(ctx, who+" expects a queue receiver, got "+v.Kind().String())
	}
	return q, nil
}

func asStack(ctx Context, v value.Value, who string) (*value.Stack, *atlaserr.RuntimeError) {
	s, ok := v.(*value.Stack)
	if !ok {
		return nil, typeErr(ctx, who+" expects a stack receiver, got "+v.Kind().String())
	}
	return s, nil
}

func qEnqueue(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("queueEnqueue", args, 2, ctx); err != nil {
		return nil, err
	}
	q, err := asQueue(ctx, args[0], "queueEnqueue")
	if err != nil {
		return nil, err
	}
	return q.Enqueued(args[1]), nil
}

func qDequeue(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("queueDequeue", args, 1, ctx); err != nil {
		return nil, err
	}
	q, err := asQueue(ctx, args[0], "queueDequeue")
	if err != nil {
		return nil, err
	}
	front, next, derr := q.Dequeued()
	if derr != nil {
		return nil, atlaserr.OutOfBounds(ctx.Span, derr.Error())
	}
	return value.NewArray([]value.Value{front, next}), nil
}

func qPeek(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("queuePeek", args, 1, ctx); err != nil {
		return nil, err
	}
	q, err := asQueue(ctx, args[0], "queuePeek")
	if err != nil {
		return nil, err
	}
	if q.Len() == 0 {
		return value.None(), nil
	}
	return value.Some(q.Elems[0]), nil
}

func qLen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("queueLen", args, 1, ctx); err != nil {
		return nil, err
	}
	q, err := asQueue(ctx, args[0], "queueLen")
	if err != nil {
		return nil, err
	}
	return value.Number(q.Len()), nil
}

func qClear(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("queueClear", args, 1, ctx); err != nil {
		return nil, err
	}
	q, err := asQueue(ctx, args[0], "queueClear")
	if err != nil {
		return nil, err
	}
	return q.Cleared(), nil
}

func stPush(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stackPush", args, 2, ctx); err != nil {
		return nil, err
	}
	s, err := asStack(ctx, args[0], "stackPush")
	if err != nil {
		return nil, err
	}
	return s.Pushed(args[1]), nil
}

func stPop(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stackPop", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asStack(ctx, args[0], "stackPop")
	if err != nil {
		return nil, err
	}
	top, next, perr := s.Popped()
	if perr != nil {
		return nil, atlaserr.OutOfBounds(ctx.Span, perr.Error())
	}
	return value.NewArray([]value.Value{top, next}), nil
}

func stPeek(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stackPeek", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asStack(ctx, args[0], "stackPeek")
	if err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return value.None(), nil
	}
	return value.Some(s.Elems[s.Len()-1]), nil
}

func stLen(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stackLen", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asStack(ctx, args[0], "stackLen")
	if err != nil {
		return nil, err
	}
	return value.Number(s.Len()), nil
}

func stClear(args []value.Value, ctx Context) (value.Value, *atlaserr.RuntimeError) {
	if err := arity("stackClear", args, 1, ctx); err != nil {
		return nil, err
	}
	s, err := asStack(ctx, args[0], "stackClear")
	if err != nil {
		return nil, err
	}
	return s.Cleared(), nil
}
