package sqlinline

const QInsertVoiceCover = `--sql 5bba1226-6e8a-40a4-aad0-cedd7dd77613
insert into voice_covers (id, owner_id, voice_id, voice_name, original_audio_url, source_title, pitch_mode, status, error_message)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

// QUpdateVoiceCover is a template: %s is replaced with the assembled set
// clause for the fields being merged.
const QUpdateVoiceCover = `--sql 5b448688-2055-42ac-8d2a-13fcb34ff03d
update voice_covers set %s where id = $1;
`

const QSelectVoiceCoverByID = `--sql d4efb39a-565a-452c-85c4-95e96ee0486f
select id, owner_id, voice_id, voice_name, original_audio_url, source_title,
  pitch_mode, status, provider_task_id, output_audio_url, error_message, created_at, updated_at
from voice_covers
where id = $1
limit 1;
`

const QListVoiceCoversByOwner = `--sql 5afa55fb-46c3-4c5f-b7a5-4d7c4955ab1b
select id, owner_id, voice_id, voice_name, original_audio_url, source_title,
  pitch_mode, status, provider_task_id, output_audio_url, error_message, created_at, updated_at
from voice_covers
where owner_id = $1
order by created_at desc;
`
