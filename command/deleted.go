package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osmarks/autobotrobot/deleted"
	"github.com/osmarks/autobotrobot/message"
	"github.com/osmarks/autobotrobot/metrics"
)

const (
	// maxDeleteLen is the maximum length of a deletion target in characters.
	maxDeleteLen = 256
	// listDeletedLimit is the number of deletions list_deleted considers.
	listDeletedLimit = 100
)

// Delete deletes a thing.
//   - Args: The thing to delete.
func Delete(ctx context.Context, robo *Robot, call *Invocation) error {
	target := strings.TrimSpace(call.Args)
	if target == "" {
		return fail("Specify something to delete.")
	}
	target = call.clean(strings.ReplaceAll(target, "\n", " "))
	if message.Len(target) > maxDeleteLen {
		return fail("Deletion target must be max 256 chars")
	}
	stop := call.Channel.StartTyping(ctx)
	defer stop()
	call.Say(ctx, "Deleting "+target+"...")
	if robo.DeleteDelay > 0 {
		t := time.NewTimer(robo.DeleteDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	item := deleted.Item{Time: robo.now(), Text: target}
	if err := robo.Deleted.Append(ctx, item); err != nil {
		return fmt.Errorf("couldn't delete %q: %w", target, err)
	}
	metrics.Observe(robo.Metrics.DeletedCount, 1)
	call.Say(ctx, "Deleted "+target+" successfully.")
	return nil
}

// ListDeleted lists recently deleted things.
//   - First token: Search text. Optional.
func ListDeleted(ctx context.Context, robo *Robot, call *Invocation) error {
	toks, err := call.Tokens()
	if err != nil {
		return err
	}
	var search string
	if len(toks) > 0 {
		search = toks[0]
	}
	items, err := robo.Deleted.Recent(ctx, listDeletedLimit, search)
	if err != nil {
		return fmt.Errorf("couldn't list deletions: %w", err)
	}
	var b strings.Builder
	if search == "" {
		b.WriteString("Recently deleted:\n")
	} else {
		fmt.Fprintf(&b, "Recently deleted (matching %s):\n", call.clean(search))
	}
	n := message.Len(b.String())
	for _, item := range items {
		line := "- " + strings.ReplaceAll(item.Text, "```", "[REDACTED]") + "\n"
		l := message.Len(line)
		if n+l > message.MaxLen {
			break
		}
		b.WriteString(line)
		n += l
	}
	call.Say(ctx, b.String())
	return nil
}
