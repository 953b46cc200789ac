package ast

import (
	"context"
	"log/slog"
)

// Slog wraps a node as a slog.LogValuer so that it is only rendered
// if the record is actually logged
func Slog(n Node) slog.LogValuer {
	return nodeLogValuer{n}
}

type nodeLogValuer struct{ Node }

func (l nodeLogValuer) LogValue() slog.Value {
	switch n := l.Node.(type) {
	case Expr:
		return slog.StringValue(ExprString(n))
	case Pattern:
		return slog.StringValue(PatternString(n))
	case TypeExpr:
		return slog.StringValue(TypeExprString(n))
	case *FnDef:
		return slog.StringValue("fn " + n.Name)
	case *TypeDef:
		return slog.StringValue("type " + n.Name)
	case *TraitDef:
		return slog.StringValue("trait " + n.Name)
	default:
		return slog.AnyValue(RangeOf(n))
	}
}

// NodeHandler is a slog.Handler capable of lazy-printing AST nodes
func NodeHandler(underlying slog.Handler) slog.Handler {
	return &nodeLogHandler{underlying: underlying}
}

func NodeLogger(underlying *slog.Logger) *slog.Logger {
	return slog.New(NodeHandler(underlying.Handler()))
}

type nodeLogHandler struct {
	underlying slog.Handler
}

func (l *nodeLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func (l *nodeLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	// for each attr, add it wrapped in Slog if it is an Any and then a Node
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.Add(wrapNodeAttr(attr))
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func wrapNodeAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	if asNode, isNode := attr.Value.Any().(Node); isNode {
		attr.Value = slog.AnyValue(Slog(asNode))
	}
	return attr
}

func (l *nodeLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = wrapNodeAttr(attr)
	}
	return NodeHandler(l.underlying.WithAttrs(wrapped))
}

func (l *nodeLogHandler) WithGroup(name string) slog.Handler {
	return NodeHandler(l.underlying.WithGroup(name))
}
