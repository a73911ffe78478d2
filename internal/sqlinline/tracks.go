// Package sqlinline collects every SQL statement the service issues as a
// named constant. Each constant opens with a --sql <uuid> audit marker that
// internal/tools/sqllint enforces.
package sqlinline

const QInsertMusicTrack = `--sql 377136f5-9003-44e6-ac92-eb0bdba2a1c7
insert into music_tracks (id, owner_id, title, prompt, style, model, instrumental, status, error_message)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// QUpdateMusicTrack is a template: %s is replaced with the assembled set
// clause for the fields being merged.
const QUpdateMusicTrack = `--sql 138a4951-0bb4-44c7-88d2-78b625ba5704
update music_tracks set %s where id = $1;
`

const QSelectMusicTrackByID = `--sql 34d8d363-c7e8-4efd-8bbd-673f6f47567c
select id, owner_id, title, prompt, style, model, instrumental, status,
  provider_task_id, audio_url, image_url, duration_secs, error_message, created_at, updated_at
from music_tracks
where id = $1
limit 1;
`

const QListMusicTracksByOwner = `--sql 18c86572-b9b8-4ac5-9366-aff5da2fc997
select id, owner_id, title, prompt, style, model, instrumental, status,
  provider_task_id, audio_url, image_url, duration_secs, error_message, created_at, updated_at
from music_tracks
where owner_id = $1
order by created_at desc;
`
